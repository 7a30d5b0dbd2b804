package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"spendtracker/internal/core"
)

// AddPreset creates the preset optimistically. The client generates the
// id; the remote store honors it, so no reconciliation is needed.
func (s *Store) AddPreset(ctx context.Context, p core.Preset) (core.Preset, error) {
	p.UserID = s.userID
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := p.Validate(); err != nil {
		return core.Preset{}, err
	}

	err := mutate(s, ctx, mutation[core.Preset]{
		apply: func() error {
			s.presets = append(s.presets, p)
			return nil
		},
		call: func(ctx context.Context) (core.Preset, error) {
			return s.remote.CreatePreset(ctx, p)
		},
		revert: func() {
			s.removePresetLocked(p.ID)
		},
	})
	if err != nil {
		return core.Preset{}, err
	}
	return p, nil
}

// UpdatePreset overwrites the preset optimistically, restoring the
// previous content if persistence fails.
func (s *Store) UpdatePreset(ctx context.Context, p core.Preset) error {
	p.UserID = s.userID
	if err := p.Validate(); err != nil {
		return err
	}

	var previous core.Preset
	var found bool
	return mutate(s, ctx, mutation[struct{}]{
		apply: func() error {
			previous, found = s.replacePresetLocked(p)
			return nil
		},
		call: func(ctx context.Context) (struct{}, error) {
			if !found {
				return struct{}{}, fmt.Errorf("preset %s not in cache", p.ID)
			}
			return struct{}{}, s.remote.UpdatePreset(ctx, p)
		},
		revert: func() {
			if found {
				s.replacePresetLocked(previous)
			}
		},
	})
}

// DeletePreset removes the preset optimistically, re-inserting it at its
// original position if persistence fails.
func (s *Store) DeletePreset(ctx context.Context, id string) error {
	var (
		removed core.Preset
		index   int
		found   bool
	)
	return mutate(s, ctx, mutation[struct{}]{
		apply: func() error {
			removed, index, found = s.removePresetLocked(id)
			return nil
		},
		call: func(ctx context.Context) (struct{}, error) {
			if !found {
				return struct{}{}, fmt.Errorf("preset %s not in cache", id)
			}
			return struct{}{}, s.remote.DeletePreset(ctx, s.userID, id)
		},
		revert: func() {
			if found {
				s.restorePresetLocked(removed, index)
			}
		},
	})
}

// ReplacePresets takes a whole-list edit, diffs it against the cached
// list by id set, and issues one remote call per added, updated or
// deleted preset. Any single failure rolls the entire local list back to
// the pre-edit snapshot.
func (s *Store) ReplacePresets(ctx context.Context, edited []core.Preset) error {
	for i := range edited {
		edited[i].UserID = s.userID
		if edited[i].ID == "" {
			edited[i].ID = uuid.NewString()
		}
		if err := edited[i].Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", edited[i].Name, err)
		}
	}

	s.mu.Lock()
	snapshot := append([]core.Preset(nil), s.presets...)
	timeout := s.timeout
	s.presets = append([]core.Preset(nil), edited...)
	s.mu.Unlock()

	previous := map[string]core.Preset{}
	for _, p := range snapshot {
		previous[p.ID] = p
	}
	edit := map[string]core.Preset{}
	for _, p := range edited {
		edit[p.ID] = p
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	g, gctx := errgroup.WithContext(callCtx)

	for _, p := range edited {
		p := p
		old, exists := previous[p.ID]
		switch {
		case !exists:
			g.Go(func() error {
				_, err := s.remote.CreatePreset(gctx, p)
				return err
			})
		case old != p:
			g.Go(func() error {
				return s.remote.UpdatePreset(gctx, p)
			})
		}
	}
	for _, p := range snapshot {
		if _, kept := edit[p.ID]; !kept {
			id := p.ID
			g.Go(func() error {
				return s.remote.DeletePreset(gctx, s.userID, id)
			})
		}
	}

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.presets = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) removePresetLocked(id string) (core.Preset, int, bool) {
	for i, p := range s.presets {
		if p.ID == id {
			s.presets = append(s.presets[:i:i], s.presets[i+1:]...)
			return p, i, true
		}
	}
	return core.Preset{}, 0, false
}

func (s *Store) restorePresetLocked(p core.Preset, index int) {
	if index < 0 || index > len(s.presets) {
		index = len(s.presets)
	}
	s.presets = append(s.presets[:index:index],
		append([]core.Preset{p}, s.presets[index:]...)...)
}

func (s *Store) replacePresetLocked(p core.Preset) (core.Preset, bool) {
	for i, q := range s.presets {
		if q.ID == p.ID {
			old := q
			s.presets[i] = p
			return old, true
		}
	}
	return core.Preset{}, false
}
