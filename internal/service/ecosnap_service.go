package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Akshith040/EcoScan1/internal/auth"
	"github.com/Akshith040/EcoScan1/internal/domain"
	"github.com/Akshith040/EcoScan1/internal/photostore"
	"github.com/Akshith040/EcoScan1/internal/store"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("history entry not found")
	ErrPasswordTooLong    = fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, auth.MaxPasswordBytes)
)

// userRepository is the subset of store.UserStore that EcoSnapService requires.
type userRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// historyRepository is the subset of store.HistoryStore that EcoSnapService requires.
type historyRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) (*domain.HistoryEntry, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.HistoryEntry, error)
	GetForUser(ctx context.Context, userID, id string) (*domain.HistoryEntry, error)
}

type classifier interface {
	Classify(ctx context.Context, photo io.Reader, contentType string) (*waste.Classification, error)
}

type instructionGenerator interface {
	Generate(ctx context.Context, wasteType, details string) (*waste.Instructions, error)
}

// Analysis is a stored history entry with its instructions split into steps.
// InstructionsErr is set when the photo was classified but instructions could
// not be generated; the entry is saved regardless.
type Analysis struct {
	Entry           *domain.HistoryEntry
	Steps           []waste.Step
	InstructionsErr error
}

func newAnalysis(entry *domain.HistoryEntry, instructionsErr error) *Analysis {
	return &Analysis{
		Entry:           entry,
		Steps:           waste.NumberSteps(waste.FormatSteps(entry.RecyclingInstructions)),
		InstructionsErr: instructionsErr,
	}
}

type EcoSnapService struct {
	users      userRepository
	history    historyRepository
	classifier classifier
	generator  instructionGenerator
	photos     photostore.PhotoStore
	logger     *slog.Logger
}

func NewEcoSnapService(
	users userRepository,
	history historyRepository,
	classifier classifier,
	generator instructionGenerator,
	photos photostore.PhotoStore,
	logger *slog.Logger,
) *EcoSnapService {
	return &EcoSnapService{
		users:      users,
		history:    history,
		classifier: classifier,
		generator:  generator,
		photos:     photos,
		logger:     logger,
	}
}

// Register creates an account. Email and password are required; the name is
// optional.
func (s *EcoSnapService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, strings.TrimSpace(name), email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *EcoSnapService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		s.logger.Info("login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *EcoSnapService) User(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Analyze classifies the photo, keeps it, asks for recycling instructions and
// records the result in the user's history. A failed classification stores
// nothing. A failed instruction call is reported on the returned Analysis and
// the entry is saved without instructions.
func (s *EcoSnapService) Analyze(ctx context.Context, userID string, imageData []byte, mimeType string) (*Analysis, error) {
	s.logger.Info("analysis started", "user_id", userID, "mime_type", mimeType, "bytes", len(imageData))

	c, err := s.classifier.Classify(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		return nil, err
	}
	s.logger.Info("classification complete", "user_id", userID, "waste_type", c.WasteType, "confidence", c.Confidence)

	key, err := s.photos.Save(ctx, userID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	var instructions string
	ins, insErr := s.generator.Generate(ctx, c.WasteType, c.Details)
	if insErr != nil {
		s.logger.Warn("saving classification without instructions", "user_id", userID, "waste_type", c.WasteType, "error", insErr)
	} else {
		instructions = ins.RecyclingInstructions
	}

	entry, err := s.history.Create(ctx, &domain.HistoryEntry{
		UserID:                userID,
		ImageKey:              key,
		MimeType:              mimeType,
		WasteType:             c.WasteType,
		Confidence:            c.Confidence,
		Details:               c.Details,
		RecyclingInstructions: instructions,
	})
	if err != nil {
		if derr := s.photos.Delete(ctx, key); derr != nil {
			s.logger.Error("failed to remove orphaned photo", "storage_key", key, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("analysis complete", "user_id", userID, "entry_id", entry.ID)
	return newAnalysis(entry, insErr), nil
}

// Refine regenerates instructions for an earlier entry using the user's own
// description of the item, and records the result as a new entry that shares
// the original photo.
func (s *EcoSnapService) Refine(ctx context.Context, userID, entryID, userDescription string) (*Analysis, error) {
	prev, err := s.Entry(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	userDescription = strings.TrimSpace(userDescription)

	ins, err := s.generator.Generate(ctx, prev.WasteType, waste.ComposeDetails(prev.Details, userDescription))
	if err != nil {
		return nil, err
	}

	entry, err := s.history.Create(ctx, &domain.HistoryEntry{
		UserID:                userID,
		ImageKey:              prev.ImageKey,
		MimeType:              prev.MimeType,
		ImageURL:              prev.ImageURL,
		WasteType:             prev.WasteType,
		Confidence:            prev.Confidence,
		Details:               prev.Details,
		UserDescription:       userDescription,
		RecyclingInstructions: ins.RecyclingInstructions,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("instructions refined", "user_id", userID, "entry_id", entry.ID, "refines", prev.ID)
	return newAnalysis(entry, nil), nil
}

// History lists the user's entries, newest first.
func (s *EcoSnapService) History(ctx context.Context, userID string) ([]*domain.HistoryEntry, error) {
	return s.history.ListByUser(ctx, userID)
}

func (s *EcoSnapService) Entry(ctx context.Context, userID, id string) (*domain.HistoryEntry, error) {
	entry, err := s.history.GetForUser(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return entry, err
}

func (s *EcoSnapService) Analysis(ctx context.Context, userID, id string) (*Analysis, error) {
	entry, err := s.Entry(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return newAnalysis(entry, nil), nil
}

// Photo opens the stored photo of one of the user's entries. The caller
// closes the reader.
func (s *EcoSnapService) Photo(ctx context.Context, userID, id string) (io.ReadCloser, string, error) {
	entry, err := s.Entry(ctx, userID, id)
	if err != nil {
		return nil, "", err
	}
	if entry.ImageKey == "" {
		return nil, "", ErrNotFound
	}

	rc, mimeType, err := s.photos.Get(ctx, entry.ImageKey)
	if errors.Is(err, photostore.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if entry.MimeType != "" {
		mimeType = entry.MimeType
	}
	return rc, mimeType, nil
}

// HistoryInput is a history record supplied by an API client that ran the
// classification itself.
type HistoryInput struct {
	ImageURL              string
	WasteType             string
	Confidence            float64
	UserDescription       string
	RecyclingInstructions string
}

func (s *EcoSnapService) RecordHistory(ctx context.Context, userID string, in HistoryInput) (*domain.HistoryEntry, error) {
	if strings.TrimSpace(in.WasteType) == "" {
		return nil, fmt.Errorf("%w: wasteType is required", ErrInvalidInput)
	}
	if in.Confidence < 0 || in.Confidence > 1 {
		return nil, fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidInput)
	}

	entry, err := s.history.Create(ctx, &domain.HistoryEntry{
		UserID:                userID,
		ImageURL:              in.ImageURL,
		WasteType:             strings.TrimSpace(in.WasteType),
		Confidence:            in.Confidence,
		UserDescription:       in.UserDescription,
		RecyclingInstructions: in.RecyclingInstructions,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("history recorded", "user_id", userID, "entry_id", entry.ID)
	return entry, nil
}
