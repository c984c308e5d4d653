// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package apitypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidrec/corvid/internal/domain"
)

func TestEntityFromDomainOmitsAttributesWhenEmpty(t *testing.T) {
	scored := domain.ScoredEntity{EntityID: "e1", EntityType: "movie", Score: 0.8}

	out := EntityFromDomain(scored, nil)

	assert.Equal(t, "e1", out.EntityID)
	assert.Equal(t, "movie", out.EntityType)
	assert.Equal(t, 0.8, out.Score)
	assert.Nil(t, out.Attributes)
}

func TestEntityFromDomainUnwrapsAttributeKinds(t *testing.T) {
	scored := domain.ScoredEntity{EntityID: "e1", EntityType: "movie", Score: 0.5}
	attrs := domain.AttributeMap{
		"title":     domain.StringValue("Arrival"),
		"runtime":   domain.NumberValue(116),
		"available": domain.BoolValue(true),
		"genres":    domain.ListValue([]string{"sci-fi", "drama"}),
		"crew": domain.MapValue(map[string]domain.AttributeValue{
			"director": domain.StringValue("Denis Villeneuve"),
		}),
	}

	out := EntityFromDomain(scored, attrs)

	assert.Equal(t, "Arrival", out.Attributes["title"])
	assert.Equal(t, 116.0, out.Attributes["runtime"])
	assert.Equal(t, true, out.Attributes["available"])
	assert.Equal(t, []string{"sci-fi", "drama"}, out.Attributes["genres"])

	crew, ok := out.Attributes["crew"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Denis Villeneuve", crew["director"])
}
