package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloudnative/fitapp/internal/domain"
	"cloudnative/fitapp/internal/repository"
	"cloudnative/fitapp/internal/storage"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Export is the document written for a user's workout export.
type Export struct {
	UserID     domain.ID        `json:"userId"`
	Name       string           `json:"name"`
	ExportedAt time.Time        `json:"exportedAt"`
	Workouts   []domain.Workout `json:"workouts"`
}

// ExportResult points at a stored export.
type ExportResult struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportUserWorkouts(ctx context.Context, userID domain.ID) (*ExportResult, error)
}

type exportService struct {
	users    repository.UserRepository
	workouts repository.WorkoutRepository
	files    storage.FileStorage
	now      func() time.Time
	expiry   time.Duration
	log      logrus.FieldLogger
}

func NewExportService(deps Deps, files storage.FileStorage) ExportService {
	deps = deps.withDefaults()
	return &exportService{
		users:    deps.Users,
		workouts: deps.Workouts,
		files:    files,
		now:      deps.Now,
		expiry:   storage.DefaultPresignedURLExpiry,
		log:      deps.Log.WithField("service", "export"),
	}
}

func exportObjectKey(userID domain.ID, at time.Time) string {
	return fmt.Sprintf("exports/%s/%s.json", userID, at.UTC().Format("20060102T150405Z"))
}

// ExportUserWorkouts writes the user's workouts as JSON to object storage
// and returns a presigned download link.
func (s *exportService) ExportUserWorkouts(ctx context.Context, userID domain.ID) (*ExportResult, error) {
	if !visibleTo(ctx, userID) {
		return nil, ErrUserNotFound
	}

	// 1. Load user and workouts
	var (
		user     *domain.User
		workouts []domain.Workout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.users.GetByID(gctx, userID)
		if err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		ws, err := s.workouts.GetAllByOwner(gctx, userID)
		if err != nil {
			return err
		}
		workouts = ws
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. Serialise
	now := s.now()
	for i := range workouts {
		workouts[i].Exercises = workouts[i].SortedExercises()
	}
	body, err := json.Marshal(Export{UserID: user.ID, Name: user.Name, ExportedAt: now, Workouts: workouts})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	// 3. Upload and sign
	key := exportObjectKey(userID, now)
	if err := s.files.PutObject(ctx, key, "application/json", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.expiry)
	if err != nil {
		if delErr := s.files.DeleteObject(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.WithError(delErr).WithField("objectKey", key).Warn("failed to remove unsigned export")
		}
		return nil, fmt.Errorf("sign export: %w", err)
	}

	s.log.WithFields(logrus.Fields{"userId": userID, "objectKey": key, "workouts": len(workouts)}).Info("workouts exported")
	return &ExportResult{ObjectKey: key, DownloadURL: url, ExpiresAt: now.Add(s.expiry)}, nil
}
