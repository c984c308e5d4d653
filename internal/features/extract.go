// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/corvidrec/corvid/internal/apierr"
	"github.com/corvidrec/corvid/internal/domain"
)

// categoricalBand is the fraction of the vector's columns reserved for
// one-hot categorical (string/bool) attributes; the remainder is split
// between numeric and list/text signal. A generalized, attribute-agnostic
// analogue of the retrieved stack's fixed genre/actor/director weighting in
// algorithms/content.go.
const categoricalBand = 0.5

// Extract projects attrs into a Dimension-length, L2-normalized feature
// vector, reading (but never mutating) the tenant's running params. It is
// the only failure boundary in the extraction path: a bad attribute map
// returns an *apierr.Error of kind InvalidAttribute and no partial vector.
func Extract(attrs domain.AttributeMap, params *TenantParams) (domain.Vector, error) {
	if d := domain.AttributeMap(attrs).Depth(); d > domain.MaxAttributeDepth {
		return nil, apierr.New(apierr.KindInvalidAttribute,
			fmt.Sprintf("attribute depth %d exceeds maximum %d", d, domain.MaxAttributeDepth))
	}

	dim := params.Dimension
	if dim <= 0 {
		dim = domain.Dimension
	}
	catWidth := int(float64(dim) * categoricalBand)
	if catWidth < 1 {
		catWidth = 1
	}
	restWidth := dim - catWidth
	if restWidth < 1 {
		restWidth = 1
		catWidth = dim - 1
	}
	numericWidth := restWidth / 2
	listWidth := restWidth - numericWidth

	out := make(domain.Vector, dim)

	var walk func(prefix string, m domain.AttributeMap) error
	walk = func(prefix string, m domain.AttributeMap) error {
		for key, v := range m {
			fullKey := key
			if prefix != "" {
				fullKey = prefix + "." + key
			}
			switch v.Kind {
			case domain.AttrString:
				addCategorical(out[:catWidth], fullKey, v.Str)
			case domain.AttrBool:
				addCategorical(out[:catWidth], fullKey, strconv.FormatBool(v.Bool))
			case domain.AttrNumber:
				if !finiteFloat(v.Num) {
					return apierr.New(apierr.KindInvalidAttribute,
						fmt.Sprintf("attribute %q is not a finite number", fullKey))
				}
				addNumeric(out[catWidth:catWidth+numericWidth], fullKey, v.Num, params)
			case domain.AttrList:
				addTokens(out[catWidth+numericWidth:], fullKey, v.List, params)
			case domain.AttrMap:
				if err := walk(fullKey, domain.AttributeMap(v.Nested)); err != nil {
					return err
				}
			default:
				return apierr.New(apierr.KindInvalidAttribute,
					fmt.Sprintf("attribute %q has an unrecognized kind", fullKey))
			}
		}
		return nil
	}
	if err := walk("", attrs); err != nil {
		return nil, err
	}

	if !out.Finite() {
		return nil, apierr.New(apierr.KindInvalidAttribute, "derived feature vector contains a non-finite value")
	}
	return out.Normalized(), nil
}

func finiteFloat(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// addCategorical hashes key=value into a column of band, additive on
// collision per §4.1.
func addCategorical(band domain.Vector, key, value string) {
	if len(band) == 0 {
		return
	}
	h := xxhash.Sum64String(key + "=" + value)
	col := int(h % uint64(len(band)))
	band[col] += 1.0
}

// addNumeric min-max scales value against the tenant's running bound for
// key and writes it into a column of band, clamped to [0,1] even while the
// bound update from this observation is still propagating (§4.1).
func addNumeric(band domain.Vector, key string, value float64, params *TenantParams) {
	if len(band) == 0 {
		return
	}
	r := params.NumericBounds[key]
	if r.Max == 0 && r.Min == 0 {
		r = Range{Min: value, Max: value}
	} else {
		r = r.Widen(value)
	}
	scaled := r.scale(value)
	h := xxhash.Sum64String("num:" + key)
	col := int(h % uint64(len(band)))
	band[col] += scaled
}

// addTokens weights each token of a list attribute by its rolling IDF
// weight and writes it additively into a column of band.
func addTokens(band domain.Vector, key string, tokens []string, params *TenantParams) {
	if len(band) == 0 {
		return
	}
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		weight := params.idf(key + ":" + tok)
		h := xxhash.Sum64String("tok:" + key + ":" + tok)
		col := int(h % uint64(len(band)))
		band[col] += weight
	}
}
