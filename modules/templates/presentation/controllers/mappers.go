package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/domain/aggregates/template"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/templates/services"
)

type recordResponse struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Name      string         `json:"name"`
	Version   int            `json:"version"`
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type instanceResponse struct {
	ID   uuid.UUID      `json:"id"`
	Type string         `json:"type"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

type inheritanceResponse struct {
	ID                 uuid.UUID           `json:"id"`
	TemplateType       string              `json:"template_type"`
	TemplateID         uuid.UUID           `json:"template_id"`
	InstanceID         uuid.UUID           `json:"instance_id"`
	InheritanceType    string              `json:"inheritance_type"`
	CustomizationLevel int                 `json:"customization_level"`
	Band               string              `json:"customization_band"`
	AutoSyncEnabled    bool                `json:"auto_sync_enabled"`
	SyncedVersion      int                 `json:"synced_version"`
	LastSyncedAt       time.Time           `json:"last_synced_at"`
	Conflicts          []template.Conflict `json:"conflicts,omitempty"`
}

type instantiateResponse struct {
	Instance    instanceResponse    `json:"instance"`
	Inheritance inheritanceResponse `json:"inheritance"`
}

type syncResponse struct {
	Inheritance   inheritanceResponse `json:"inheritance"`
	AppliedFields []string            `json:"applied_fields,omitempty"`
	Conflicts     []template.Conflict `json:"conflicts,omitempty"`
	Skipped       bool                `json:"skipped"`
	UpToDate      bool                `json:"up_to_date"`
}

func toRecordResponse(record *template.Record) recordResponse {
	return recordResponse{
		ID:        record.ID(),
		Type:      string(record.Type()),
		Name:      record.Name(),
		Version:   record.Version(),
		Data:      record.Data(),
		UpdatedAt: record.UpdatedAt(),
	}
}

func toInstanceResponse(instance *template.Instance) instanceResponse {
	return instanceResponse{
		ID:   instance.ID(),
		Type: string(instance.Type()),
		Name: instance.Name(),
		Data: instance.Data(),
	}
}

func toInheritanceResponse(inh *template.Inheritance) inheritanceResponse {
	return inheritanceResponse{
		ID:                 inh.ID(),
		TemplateType:       string(inh.TemplateType()),
		TemplateID:         inh.TemplateID(),
		InstanceID:         inh.InstanceID(),
		InheritanceType:    string(inh.InheritanceType()),
		CustomizationLevel: inh.CustomizationLevel(),
		Band:               string(inh.Band()),
		AutoSyncEnabled:    inh.AutoSyncEnabled(),
		SyncedVersion:      inh.SyncedVersion(),
		LastSyncedAt:       inh.LastSyncedAt(),
		Conflicts:          inh.Conflicts(),
	}
}

func toInstantiateResponse(result *services.InstantiateResult) instantiateResponse {
	return instantiateResponse{
		Instance:    toInstanceResponse(result.Instance),
		Inheritance: toInheritanceResponse(result.Inheritance),
	}
}

func toSyncResponse(result *services.SyncResult) syncResponse {
	return syncResponse{
		Inheritance:   toInheritanceResponse(result.Inheritance),
		AppliedFields: result.AppliedFields,
		Conflicts:     result.Conflicts,
		Skipped:       result.Skipped,
		UpToDate:      result.UpToDate,
	}
}
