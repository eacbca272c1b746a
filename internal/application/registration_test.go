package app

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"shearzone/internal/domain/entity"
)

type fakeRegistrar struct {
	err     error
	params  entity.RegistrationParams
	release chan struct{} // nil: отвечает сразу
}

func (f *fakeRegistrar) Register(ctx context.Context, reference, moving image.Image, params entity.RegistrationParams) (*entity.RegistrationResult, error) {
	if f.release != nil {
		<-f.release
	}
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &entity.RegistrationResult{
		Warped:     image.NewNRGBA(reference.Bounds()),
		Matches:    moving,
		Estimate:   entity.TransformEstimate{Matrix: entity.Identity()},
		MatchCount: 42,
	}, nil
}

func TestRegistrationService_Flow(t *testing.T) {
	sessions := newSessions()
	registrar := &fakeRegistrar{}
	svc := NewRegistrationService(sessions, registrar, NewJobGuard())
	ctx := context.Background()

	s, err := svc.BeginRegistration(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingReferencePhoto, s.State)

	s, err = svc.AcceptReferencePhoto(ctx, 1, 10, specimen())
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingDamagePhoto, s.State)

	job, err := svc.StartRegistration(ctx, 1, 10, specimen())
	require.NoError(t, err)
	res, err := job.Wait()
	require.NoError(t, err)
	require.Equal(t, 42, res.MatchCount)
	require.Equal(t, entity.AlgorithmORB, registrar.params.Algorithm)

	s, err = sessions.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, s.State)
	require.Nil(t, s.Reference)
	require.NotNil(t, s.Project)
	require.Same(t, res.Warped, s.Project.Origin)
}

func TestRegistrationService_InsufficientMatchesKeepsReference(t *testing.T) {
	sessions := newSessions()
	registrar := &fakeRegistrar{err: &entity.InsufficientMatchesError{Found: 3, Required: entity.MinMatchCount}}
	svc := NewRegistrationService(sessions, registrar, NewJobGuard())
	ctx := context.Background()

	_, err := svc.AcceptReferencePhoto(ctx, 1, 10, specimen())
	require.NoError(t, err)

	job, err := svc.StartRegistration(ctx, 1, 10, specimen())
	require.NoError(t, err)
	_, err = job.Wait()
	require.ErrorIs(t, err, entity.ErrInsufficientMatches)

	s, err := sessions.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingDamagePhoto, s.State)
	require.NotNil(t, s.Reference)
	require.Nil(t, s.Project)
}

func TestRegistrationService_NeedsReference(t *testing.T) {
	svc := NewRegistrationService(newSessions(), &fakeRegistrar{}, NewJobGuard())
	_, err := svc.StartRegistration(context.Background(), 1, 10, specimen())
	require.ErrorIs(t, err, entity.ErrNoImage)
}

func TestRegistrationService_SessionSnapshotIsNotShared(t *testing.T) {
	sessions := newSessions()
	registrar := &fakeRegistrar{release: make(chan struct{})}
	svc := NewRegistrationService(sessions, registrar, NewJobGuard())
	ctx := context.Background()

	_, err := svc.AcceptReferencePhoto(ctx, 1, 10, specimen())
	require.NoError(t, err)
	job, err := svc.StartRegistration(ctx, 1, 10, specimen())
	require.NoError(t, err)

	snapshot, err := sessions.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, snapshot.State)

	// чтение снимка сессии идёт параллельно с записью из задачи; проверяется с -race
	stop := make(chan struct{})
	seen := make(chan entity.SessionState, 1)
	go func() {
		var state entity.SessionState
		for {
			select {
			case <-stop:
				seen <- state
				return
			default:
				state = snapshot.State
				_ = snapshot.Project
			}
		}
	}()

	close(registrar.release)
	_, err = job.Wait()
	require.NoError(t, err)
	close(stop)
	require.Equal(t, entity.StateProcessing, <-seen)

	fresh, err := sessions.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, fresh.State)
	require.NotNil(t, fresh.Project)
	require.Nil(t, snapshot.Project)
}
