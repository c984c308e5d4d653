// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package vectorstore

// entityKey builds the HNSW index node id for an entity; the user-profile
// index uses the bare user id. \x1f (unit separator) can't appear in a tenant/id/type string
// supplied over JSON, so this is collision-free without escaping.
func entityKey(id, entityType string) string {
	return id + "\x1f" + entityType
}

func splitEntityKey(key string) (id, entityType string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '\x1f' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}
