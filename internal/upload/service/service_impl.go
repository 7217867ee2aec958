package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	"github.com/smallbiznis/ledgerview/internal/observability/metrics"
	"github.com/smallbiznis/ledgerview/internal/orgcontext"
	"github.com/smallbiznis/ledgerview/internal/upload/domain"
)

const maxUploadSize = 25 << 20 // 25 MiB

var allowedExtensions = map[string]bool{
	".csv":  true,
	".ofx":  true,
	".qfx":  true,
	".qif":  true,
	".pdf":  true,
	".xlsx": true,
}

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Clock   clock.Clock
	Metrics *metrics.Metrics
}

type uploadService struct {
	dir     string
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	clock   clock.Clock
	metrics *metrics.Metrics
}

func New(p Params) (domain.Service, error) {
	if err := os.MkdirAll(p.Cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	return &uploadService{
		dir:     p.Cfg.UploadDir,
		log:     p.Log.Named("upload.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		clock:   p.Clock,
		metrics: p.Metrics,
	}, nil
}

func (s *uploadService) Store(ctx context.Context, req domain.StoreRequest) (*domain.Upload, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	name := filepath.Base(strings.TrimSpace(req.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, domain.ErrInvalidFilename
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return nil, domain.ErrUnsupportedType
	}
	if req.Size > maxUploadSize {
		return nil, domain.ErrFileTooLarge
	}

	storedName := ulid.Make().String() + ext
	dst := filepath.Join(s.dir, storedName)

	// Write through a temp file and rename so a failed upload never
	// leaves a partial artifact under the stored name.
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hash), io.LimitReader(req.Body, maxUploadSize+1))
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if written > maxUploadSize {
		tmp.Close()
		return nil, domain.ErrFileTooLarge
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return nil, err
	}

	upload := &domain.Upload{
		ID:          s.genID.Generate(),
		OrgID:       orgID,
		Filename:    slug.Make(strings.TrimSuffix(name, ext)) + ext,
		StoredName:  storedName,
		ContentType: req.ContentType,
		Size:        written,
		Checksum:    hex.EncodeToString(hash.Sum(nil)),
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		os.Remove(dst)
		return nil, err
	}

	s.metrics.RecordUploadBytes(ctx, orgID.String(), written)
	s.log.Info("file stored",
		zap.String("org_id", orgID.String()),
		zap.String("upload_id", upload.ID.String()),
		zap.Int64("size", written),
	)
	return upload, nil
}

func (s *uploadService) List(ctx context.Context) ([]domain.Upload, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.Find(ctx, orgID)
}

func (s *uploadService) Open(ctx context.Context, id snowflake.ID) (io.ReadCloser, *domain.Upload, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, nil, domain.ErrInvalidOrganization
	}

	upload, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		return nil, nil, err
	}
	if upload == nil {
		return nil, nil, domain.ErrUploadNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, upload.StoredName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, domain.ErrUploadNotFound
		}
		return nil, nil, err
	}
	return f, upload, nil
}
