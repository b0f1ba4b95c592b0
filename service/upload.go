package service

import (
	"clearpath-signals/constant"
	"clearpath-signals/dto"
	"clearpath-signals/entities"
	"clearpath-signals/pkg/cvclient"
	"clearpath-signals/pkg/storage"
	"clearpath-signals/repository"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var allowedVideoExt = map[string]string{
	".mp4": "video/mp4",
	".avi": "video/x-msvideo",
	".mov": "video/quicktime",
	".mkv": "video/x-matroska",
}

type UploadService interface {
	// Upload stores one video per direction, creates the session and starts
	// CV processing in the background.
	Upload(ctx context.Context, files map[constant.Direction]*multipart.FileHeader, owner *uuid.UUID) (*entities.Session, error)
	Drain()
}

type uploadService struct {
	repo        repository.SessionRepository
	store       storage.VideoStore
	dispatcher  cvclient.Dispatcher
	ingest      IngestService
	maxFileSize int64
	urlExpiry   time.Duration
	now         func() time.Time
	wg          sync.WaitGroup
}

func NewUploadService(repo repository.SessionRepository, store storage.VideoStore, dispatcher cvclient.Dispatcher, ingest IngestService, maxFileSize int64, urlExpiry time.Duration) UploadService {
	return &uploadService{
		repo:        repo,
		store:       store,
		dispatcher:  dispatcher,
		ingest:      ingest,
		maxFileSize: maxFileSize,
		urlExpiry:   urlExpiry,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *uploadService) Upload(ctx context.Context, files map[constant.Direction]*multipart.FileHeader, owner *uuid.UUID) (*entities.Session, error) {
	if err := s.validate(files); err != nil {
		return nil, err
	}

	session, err := s.createSession(ctx, files, owner)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("session_id", session.SessionID).Msg("simulation created")

	keys := videoKeys(session.Videos)
	for _, dir := range constant.Directions {
		if err := s.put(ctx, keys[dir], files[dir]); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("session_id", session.SessionID).Str("direction", dir.String()).Msg("failed to store video")
			if markErr := s.ingest.MarkFailed(ctx, session.SessionID); markErr != nil {
				zerolog.Ctx(ctx).Error().Err(markErr).Msg("failed to mark simulation failed")
			}
			return nil, err
		}
	}

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		s.dispatch(ctx, session.SessionID, keys)
	}(context.WithoutCancel(ctx))

	return session, nil
}

func (s *uploadService) validate(files map[constant.Direction]*multipart.FileHeader) error {
	var missing []string
	for _, dir := range constant.Directions {
		fh := files[dir]
		if fh == nil {
			missing = append(missing, dir.String())
			continue
		}
		if _, ok := allowedVideoExt[strings.ToLower(filepath.Ext(fh.Filename))]; !ok {
			return fmt.Errorf("%w: %s: only mp4, avi, mov and mkv videos are allowed", ErrValidation, dir)
		}
		if s.maxFileSize > 0 && fh.Size > s.maxFileSize {
			return fmt.Errorf("%w: %s: video exceeds %d bytes", ErrValidation, dir, s.maxFileSize)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing videos for directions: %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// createSession inserts the row, moving to the next millisecond when the
// generated id is already taken.
func (s *uploadService) createSession(ctx context.Context, files map[constant.Direction]*multipart.FileHeader, owner *uuid.UUID) (*entities.Session, error) {
	now := s.now()
	for attempt := 0; attempt < 5; attempt++ {
		sessionID := fmt.Sprintf("session-%d", now.UnixMilli()+int64(attempt))
		session := &entities.Session{
			SessionID: sessionID,
			Videos: entities.Videos{
				North: objectKey(sessionID, constant.DirectionNorth, files),
				South: objectKey(sessionID, constant.DirectionSouth, files),
				East:  objectKey(sessionID, constant.DirectionEast, files),
				West:  objectKey(sessionID, constant.DirectionWest, files),
			},
			Status:    constant.SessionStatusProcessing,
			StartedAt: now,
			UserID:    owner,
			CurrentState: entities.CurrentState{
				SignalState: entities.SignalState{}.WithDefaults(),
			},
		}
		err := s.repo.CreateSession(ctx, session)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		return session, nil
	}
	return nil, fmt.Errorf("create session: could not allocate a unique session id")
}

func objectKey(sessionID string, dir constant.Direction, files map[constant.Direction]*multipart.FileHeader) string {
	ext := strings.ToLower(filepath.Ext(files[dir].Filename))
	return path.Join("sessions", sessionID, dir.String()+ext)
}

func videoKeys(v entities.Videos) map[constant.Direction]string {
	return map[constant.Direction]string{
		constant.DirectionNorth: v.North,
		constant.DirectionSouth: v.South,
		constant.DirectionEast:  v.East,
		constant.DirectionWest:  v.West,
	}
}

func (s *uploadService) put(ctx context.Context, key string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	return s.store.Put(ctx, key, f, fh.Size, allowedVideoExt[strings.ToLower(filepath.Ext(fh.Filename))])
}

// dispatch hands the stored videos to the CV service. Any failure marks the
// session failed; the uploader has already been answered.
func (s *uploadService) dispatch(ctx context.Context, sessionID string, keys map[constant.Direction]string) {
	logger := zerolog.Ctx(ctx).With().Str("session_id", sessionID).Logger()

	req := dto.VideoDispatch{SessionID: sessionID, Videos: make(map[string]string, len(keys))}
	var err error
	for dir, key := range keys {
		var url string
		url, err = s.store.PresignedURL(ctx, key, s.urlExpiry)
		if err != nil {
			break
		}
		req.Videos[dir.String()] = url
	}
	if err == nil {
		logger.Info().Msg("sending videos to CV service")
		err = s.dispatcher.Dispatch(ctx, req)
	}
	if err != nil {
		logger.Error().Err(err).Msg("CV service dispatch failed")
		if markErr := s.ingest.MarkFailed(ctx, sessionID); markErr != nil {
			logger.Error().Err(markErr).Msg("failed to mark simulation failed")
		}
		return
	}
	logger.Info().Msg("CV service started processing")
}

func (s *uploadService) Drain() {
	s.wg.Wait()
}
