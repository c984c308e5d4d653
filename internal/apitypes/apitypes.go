// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package apitypes holds the wire-shape structs of §6's external
// interfaces: the JSON request/response contract the recommendation core
// speaks, independent of whatever HTTP router an embedding service
// chooses. No handlers live here — routing and transport are the external
// collaborator's job.
package apitypes

import (
	"time"

	"github.com/corvidrec/corvid/internal/domain"
)

// UserRecommendationRequest is the parsed query of
// GET /recommendations/user/{user_id}.
type UserRecommendationRequest struct {
	UserID              string  `validate:"required"`
	Count               int     `validate:"min=1,max=100"`
	Algorithm           string  `validate:"omitempty,oneof=collaborative content_based hybrid"`
	EntityType          string  `validate:"omitempty"`
	CollaborativeWeight float64 `validate:"omitempty,min=0,max=1"`
	ContentBasedWeight  float64 `validate:"omitempty,min=0,max=1"`
}

// EntityRecommendationRequest is the parsed query of
// GET /recommendations/entity/{entity_id}.
type EntityRecommendationRequest struct {
	EntityID   string `validate:"required"`
	EntityType string `validate:"required"`
	Count      int    `validate:"min=1,max=100"`
}

// TrendingRequest is the parsed query of GET /recommendations/trending.
type TrendingRequest struct {
	EntityType string `validate:"omitempty"`
	Count      int    `validate:"min=1,max=100"`
	WindowDays int    `validate:"omitempty,min=1,max=90"`
}

// RecommendedEntity is one row of a RecommendationResponse.
type RecommendedEntity struct {
	EntityID   string                 `json:"entity_id"`
	EntityType string                 `json:"entity_type"`
	Score      float64                `json:"score"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// RecommendationResponse is the §6 response shape returned by every
// recommendation read path (user-seeded, entity-seeded, and trending).
type RecommendationResponse struct {
	Recommendations []RecommendedEntity `json:"recommendations"`
	Algorithm       string              `json:"algorithm"`
	ColdStart       bool                `json:"cold_start"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// InteractionRequest is the POST /interactions body.
type InteractionRequest struct {
	UserID          string            `json:"user_id" validate:"required"`
	EntityID        string            `json:"entity_id" validate:"required"`
	EntityType      string            `json:"entity_type" validate:"required"`
	InteractionType string            `json:"interaction_type" validate:"required"`
	Weight          *float64          `json:"weight,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Timestamp       *time.Time        `json:"timestamp,omitempty"`
}

// BulkImportResult is the §4.9 bulk-import response shape.
type BulkImportResult struct {
	Status      string           `json:"status"`
	Total       int              `json:"total"`
	Succeeded   int              `json:"succeeded"`
	FailedItems []BulkFailedItem `json:"failed_items"`
}

// BulkFailedItem reports one bulk-import row's failure.
type BulkFailedItem struct {
	UserID   string `json:"user_id"`
	EntityID string `json:"entity_id,omitempty"`
	Error    string `json:"error"`
}

// EntityFromDomain converts a ScoredEntity plus its attribute dictionary
// into the wire shape, unwrapping the tagged-union AttributeValue into
// plain JSON-able values.
func EntityFromDomain(e domain.ScoredEntity, attrs domain.AttributeMap) RecommendedEntity {
	out := RecommendedEntity{EntityID: e.EntityID, EntityType: e.EntityType, Score: e.Score}
	if len(attrs) > 0 {
		out.Attributes = attributesToJSON(attrs)
	}
	return out
}

func attributesToJSON(m domain.AttributeMap) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = attributeValueToJSON(v)
	}
	return out
}

func attributeValueToJSON(v domain.AttributeValue) interface{} {
	switch v.Kind {
	case domain.AttrString:
		return v.Str
	case domain.AttrNumber:
		return v.Num
	case domain.AttrBool:
		return v.Bool
	case domain.AttrList:
		return v.List
	case domain.AttrMap:
		return attributesToJSON(v.Nested)
	default:
		return nil
	}
}
