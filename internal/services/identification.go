package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/crystal-grimoire-backend/internal/clients/gcp"
	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const DefaultMaxImageBytes int64 = 10 << 20

type IdentifyRequest struct {
	// ImageData is raw base64 or a data:image/...;base64, URL.
	ImageData   string         `json:"image_data"`
	MimeType    string         `json:"mime_type,omitempty"`
	UserContext map[string]any `json:"user_context,omitempty"`
}

type IdentifyResult struct {
	IdentificationID uuid.UUID                 `json:"identification_id"`
	Crystal          *types.UnifiedCrystalData `json:"crystal"`
	Cached           bool                      `json:"cached"`
	ImageURL         *string                   `json:"image_url"`
	Provider         string                    `json:"provider"`
	Model            string                    `json:"model"`
}

type IdentificationService interface {
	Identify(ctx context.Context, req IdentifyRequest) (*IdentifyResult, error)
	Available() bool
}

type identificationService struct {
	log        *logger.Logger
	repo       repos.IdentificationRepo
	vision     VisionModel
	cache      AICache
	store      SpecimenStore
	normalizer *normalization.Normalizer
	maxBytes   int64
}

// NewIdentificationService wires the identify flow. vision, cache and store may be nil;
// without vision every call fails with ai_unavailable.
func NewIdentificationService(
	log *logger.Logger,
	repo repos.IdentificationRepo,
	vision VisionModel,
	cache AICache,
	store SpecimenStore,
	maxImageBytes int64,
) IdentificationService {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}
	return &identificationService{
		log:        log.With("service", "IdentificationService"),
		repo:       repo,
		vision:     vision,
		cache:      cache,
		store:      store,
		normalizer: normalization.New(),
		maxBytes:   maxImageBytes,
	}
}

func (s *identificationService) Available() bool { return s.vision != nil }

func (s *identificationService) Identify(ctx context.Context, req IdentifyRequest) (*IdentifyResult, error) {
	if s.vision == nil {
		return nil, apierr.Unavailable("ai_unavailable", "vision model")
	}

	img, mimeType, err := decodeImage(req.ImageData, req.MimeType)
	if err != nil {
		return nil, err
	}
	if int64(len(img)) > s.maxBytes {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, "image_too_large",
			fmt.Errorf("image is %d bytes, limit is %d", len(img), s.maxBytes))
	}

	info, err := inspectImage(img, mimeType)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(img)
	imageHash := hex.EncodeToString(sum[:])
	prompt := buildIdentificationPrompt(req.UserContext)

	var (
		raw      map[string]any
		rawJSON  []byte
		cached   bool
		imageKey string
		uploaded bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obj, b, hit, err := s.analyze(gctx, imageHash, prompt, img, mimeType)
		if err != nil {
			return err
		}
		raw, rawJSON, cached = obj, b, hit
		return nil
	})
	if s.store != nil {
		imageKey = gcp.SpecimenKey(imageHash, mimeType)
		g.Go(func() error {
			if err := s.store.UploadImage(dbctx.Context{Ctx: gctx}, imageKey, mimeType, img); err != nil {
				// Image storage is best effort; identification still succeeds.
				s.log.Warn("specimen upload failed", "key", imageKey, "error", err)
				return nil
			}
			uploaded = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discardImage(ctx, imageKey, uploaded)
		return nil, err
	}

	unified := s.normalizer.Normalize(raw)
	id, err := uuid.Parse(unified.CrystalCore.ID)
	if err != nil {
		s.discardImage(ctx, imageKey, uploaded)
		return nil, fmt.Errorf("normalized id %q: %w", unified.CrystalCore.ID, err)
	}
	unifiedJSON, err := json.Marshal(unified)
	if err != nil {
		s.discardImage(ctx, imageKey, uploaded)
		return nil, fmt.Errorf("marshal unified record: %w", err)
	}

	row := &types.CrystalIdentification{
		ID:          id,
		StoneType:   unified.CrystalCore.Identification.StoneType,
		Confidence:  unified.CrystalCore.ConfidenceScore,
		ImageHash:   imageHash,
		Provider:    s.vision.Provider(),
		Model:       s.vision.Model(),
		Cached:      cached,
		Unified:     datatypes.JSON(unifiedJSON),
		RawResponse: datatypes.JSON(rawJSON),
		CreatedAt:   unified.CrystalCore.Timestamp,
	}
	if uid := ctxutil.UserID(ctx); uid != "" {
		row.UserID = &uid
	}
	if uploaded {
		row.ImageKey = &imageKey
	}
	if _, err := s.repo.Create(dbctx.Context{Ctx: ctx}, []*types.CrystalIdentification{row}); err != nil {
		s.discardImage(ctx, imageKey, uploaded)
		return nil, fmt.Errorf("persist identification: %w", err)
	}

	out := &IdentifyResult{
		IdentificationID: id,
		Crystal:          unified,
		Cached:           cached,
		Provider:         row.Provider,
		Model:            row.Model,
	}
	if uploaded {
		u := s.store.GetPublicURL(imageKey)
		out.ImageURL = &u
	}
	kv := []any{
		"identification_id", id.String(),
		"stone_type", row.StoneType,
		"confidence", row.Confidence,
		"cached", cached,
	}
	if info != nil {
		kv = append(kv, "image_format", info.Format, "width", info.Width, "height", info.Height)
	}
	s.log.Info("crystal identified", kv...)
	return out, nil
}

// analyze returns the model's JSON object for the image, consulting the cache first.
func (s *identificationService) analyze(ctx context.Context, imageHash, prompt string, img []byte, mimeType string) (map[string]any, []byte, bool, error) {
	if s.cache != nil {
		b, ok, err := s.cache.Get(ctx, imageHash)
		switch {
		case err != nil:
			s.log.Warn("ai cache get failed", "error", err)
		case ok:
			if obj, _, perr := ExtractJSONObject(string(b)); perr == nil {
				return obj, b, true, nil
			}
			s.log.Warn("ai cache entry unreadable, refetching", "image_hash", imageHash)
		}
	}

	text, err := s.vision.GenerateFromImage(ctx, identificationSystemPrompt, prompt, img, mimeType)
	if err != nil {
		return nil, nil, false, apierr.New(http.StatusBadGateway, "ai_failed", fmt.Errorf("vision model: %w", err))
	}
	obj, _, err := ExtractJSONObject(text)
	if err != nil {
		return nil, nil, false, apierr.New(http.StatusBadGateway, "ai_invalid_json", err)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, nil, false, fmt.Errorf("re-encode model JSON: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, imageHash, b); err != nil {
			s.log.Warn("ai cache set failed", "error", err)
		}
	}
	return obj, b, false, nil
}

func (s *identificationService) discardImage(ctx context.Context, key string, uploaded bool) {
	if !uploaded || s.store == nil {
		return
	}
	if err := s.store.DeleteImage(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, key); err != nil {
		s.log.Warn("specimen cleanup failed", "key", key, "error", err)
	}
}

// decodeImage accepts raw base64 or a data URL and returns the bytes with a resolved image MIME type.
func decodeImage(data, mimeType string) ([]byte, string, error) {
	s := strings.TrimSpace(data)
	if s == "" {
		return nil, "", apierr.BadRequest("missing_image", "image_data is required")
	}
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", apierr.BadRequest("invalid_image", "malformed data URL")
		}
		header := s[len("data:"):comma]
		if !strings.HasSuffix(header, ";base64") {
			return nil, "", apierr.BadRequest("invalid_image", "data URL must be base64 encoded")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(header, ";base64")
		}
		s = s[comma+1:]
	}

	img, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		img, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, "", apierr.BadRequest("invalid_image", "image_data is not valid base64")
	}
	if len(img) == 0 {
		return nil, "", apierr.BadRequest("missing_image", "image_data is empty")
	}

	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(img)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", apierr.BadRequest("invalid_image", "unsupported content type %q", mimeType)
	}
	return img, mimeType, nil
}
