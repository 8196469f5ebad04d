// Copyright 2026 The Lighthouse Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// PageIterator walks a paginated list endpoint one page at a time.
// The Actions list endpoints wrap their items in an object
// ({"total_count": N, "workflow_runs": [...]}); field names the key
// holding the items. Not safe for concurrent use.
type PageIterator[T any] struct {
	client  *Client
	field   string
	nextURL string
}

func list[T any](client *Client, path, field string) *PageIterator[T] {
	return &PageIterator[T]{
		client:  client,
		field:   field,
		nextURL: client.baseURL + path,
	}
}

// Next fetches the next page. It returns nil, nil once every page has
// been consumed.
func (iterator *PageIterator[T]) Next(ctx context.Context) ([]T, error) {
	if iterator.nextURL == "" {
		return nil, nil
	}

	body, header, err := iterator.client.fetchWithHeader(ctx, iterator.nextURL, false)
	if err != nil {
		return nil, err
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("github: decoding page: %w", err)
	}
	items := []T{}
	if raw, ok := envelope[iterator.field]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("github: decoding %s: %w", iterator.field, err)
		}
	}

	iterator.nextURL = parseLinkNext(header.Get("Link"))
	return items, nil
}

// Collect fetches every remaining page.
func (iterator *PageIterator[T]) Collect(ctx context.Context) ([]T, error) {
	var all []T
	for {
		items, err := iterator.Next(ctx)
		if err != nil {
			return all, err
		}
		if items == nil {
			return all, nil
		}
		all = append(all, items...)
	}
}

// parseLinkNext returns the rel="next" URL of an RFC 5988 Link header,
// or "" when there is none.
//
//	<https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		target, parameters, found := strings.Cut(strings.TrimSpace(part), ";")
		if !found || !strings.Contains(parameters, `rel="next"`) {
			continue
		}
		target = strings.TrimSpace(target)
		if strings.HasPrefix(target, "<") && strings.HasSuffix(target, ">") {
			return target[1 : len(target)-1]
		}
	}
	return ""
}
