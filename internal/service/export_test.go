package service

import "context"

// SaveTracker exposes saveTracker to the service_test package.
type SaveTracker struct{ t saveTracker }

func (s *SaveTracker) Begin(sceneID string) (func(), bool) { return s.t.begin(sceneID) }
func (s *SaveTracker) Writing(sceneID string) bool           { return s.t.writing(sceneID) }
func (s *SaveTracker) Wait(ctx context.Context)               { s.t.wait(ctx) }
