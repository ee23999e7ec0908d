// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"context"

	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

type SubmitterSrv interface {
	List(ctx context.Context, opts metav1.ListOptions) ([]*v1.Submitter, error)
	Get(ctx context.Context, identifier string) (*v1.Submitter, error)
	SetFlags(ctx context.Context, identifier string, opts metav1.SetFlagsOptions) (*v1.Submitter, error)
	Delete(ctx context.Context, identifier string) (metav1.DeleteSubmitterResult, error)
}

type submitterService struct {
	store store.Factory
	cache *cache.Cache
	hints *cache.SessionHints
}

func newSubmitters(srv *service) *submitterService {
	return &submitterService{store: srv.deps.Store, cache: srv.deps.Cache, hints: srv.deps.Hints}
}

func (s *submitterService) List(ctx context.Context, opts metav1.ListOptions) ([]*v1.Submitter, error) {
	return s.store.Submitters().List(ctx, opts)
}

func (s *submitterService) Get(ctx context.Context, identifier string) (*v1.Submitter, error) {
	return s.store.Submitters().Get(ctx, identifier)
}

// SetFlags updates storage and then the live cache, so the next upload
// sees the new flags without waiting for a refresh.
func (s *submitterService) SetFlags(ctx context.Context, identifier string, opts metav1.SetFlagsOptions) (*v1.Submitter, error) {
	sub, err := s.store.Submitters().SetFlags(ctx, identifier, opts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(sub.Identity())
	}
	return sub, nil
}

func (s *submitterService) Delete(ctx context.Context, identifier string) (metav1.DeleteSubmitterResult, error) {
	result, err := s.store.Submitters().Delete(ctx, identifier)
	if err != nil {
		return result, err
	}
	if s.cache != nil {
		s.cache.Remove(identifier)
	}
	if s.hints != nil {
		s.hints.Remove(identifier)
	}
	return result, nil
}
