package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"settlement/internal/cache"
	"settlement/internal/domain"
	"settlement/internal/excel"
	"settlement/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidUpload marks an upload rejected before any row is processed
// (missing filename or disallowed extension). Callers redirect silently
// instead of flashing a message.
var ErrInvalidUpload = errors.New("invalid upload")

// Repository is the persistence surface the service needs. The pgx
// implementation lives in internal/repository; tests supply an in-memory
// stub.
type Repository interface {
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	EnsureDefaultUser(ctx context.Context, username, passwordHash string) error
	ListStores(ctx context.Context) ([]domain.Store, error)
	GetStore(ctx context.Context, id int64) (*domain.Store, error)
	GetProductName(ctx context.Context, barcode string) (*string, error)
	InsertSalesRecords(ctx context.Context, records []domain.SalesRecord) (int, error)
	ExportSalesRows(ctx context.Context, filter repository.ExportFilter) ([]domain.ExportRow, error)
}

type Options struct {
	UploadDir         string
	ExportDir         string
	AllowedExtensions []string
	RateCacheTTL      time.Duration
}

type Service struct {
	repo        Repository
	rates       cache.RateCache
	uploadDir   string
	exportDir   string
	allowedExts map[string]struct{}
	rateTTL     time.Duration
}

func New(repo Repository, rates cache.RateCache, opts Options) *Service {
	allowed := make(map[string]struct{}, len(opts.AllowedExtensions))
	for _, ext := range opts.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	if rates == nil {
		rates = cache.NoopRateCache{}
	}
	return &Service{
		repo:        repo,
		rates:       rates,
		uploadDir:   opts.UploadDir,
		exportDir:   opts.ExportDir,
		allowedExts: allowed,
		rateTTL:     opts.RateCacheTTL,
	}
}

// Authenticate verifies a username/password pair. Unknown users and
// password mismatches both return (nil, nil); no detail is leaked.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, nil
	}
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// EnsureDefaultUser seeds the initial login when the users table is
// empty. Further accounts are created out-of-band.
func (s *Service) EnsureDefaultUser(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}
	return s.repo.EnsureDefaultUser(ctx, "admin", string(hash))
}

func (s *Service) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.ListStores(ctx)
}

type ImportInput struct {
	Filename   string
	Content    []byte
	StoreID    int64
	OperatorID int64
}

// ImportSales runs the whole import pipeline: retain the upload on disk,
// decode its rows, resolve the store's deduction rate once, compute the
// per-line amounts, resolve product names, and insert everything as one
// batch. Any failure after validation leaves the database unchanged.
func (s *Service) ImportSales(ctx context.Context, input ImportInput) (int, error) {
	filename := filepath.Base(strings.TrimSpace(input.Filename))
	if filename == "" || filename == "." {
		return 0, ErrInvalidUpload
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := s.allowedExts[ext]; !ok {
		return 0, ErrInvalidUpload
	}
	if len(input.Content) == 0 {
		return 0, ErrInvalidUpload
	}

	// The raw upload is retained alongside its structured content.
	// Filenames are taken as-is, so concurrent uploads with the same
	// name overwrite each other. TODO: qualify retained filenames the
	// way exports are qualified.
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return 0, fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, filename), input.Content, 0o644); err != nil {
		return 0, fmt.Errorf("save upload: %w", err)
	}

	lines, err := excel.ParseSalesRows(bytes.NewReader(input.Content))
	if err != nil {
		return 0, err
	}

	rate, err := s.resolveDeductionRate(ctx, input.StoreID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	yearMonth := now.Format("2006-01")

	records := make([]domain.SalesRecord, 0, len(lines))
	for _, line := range lines {
		deduction, settlement := ComputeSettlement(line.Total, rate)

		productName, err := s.repo.GetProductName(ctx, line.Barcode)
		if err != nil {
			return 0, err
		}

		records = append(records, domain.SalesRecord{
			Barcode:          line.Barcode,
			ProductName:      productName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			TotalAmount:      line.Total,
			DeductionRate:    rate,
			DeductionAmount:  deduction,
			SettlementAmount: settlement,
			YearMonth:        yearMonth,
			ImportTime:       now,
			OperatorID:       input.OperatorID,
			StoreID:          input.StoreID,
		})
	}

	return s.repo.InsertSalesRecords(ctx, records)
}

// resolveDeductionRate is looked up once per import, not per row. A
// missing store degrades to a zero rate rather than failing the import.
func (s *Service) resolveDeductionRate(ctx context.Context, storeID int64) (float64, error) {
	if rate, ok, err := s.rates.GetRate(ctx, storeID); err == nil && ok {
		return rate, nil
	}

	store, err := s.repo.GetStore(ctx, storeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0.0, nil
		}
		return 0, err
	}

	_ = s.rates.SetRate(ctx, storeID, store.DeductionRate, s.rateTTL)
	return store.DeductionRate, nil
}

type ExportQuery struct {
	StoreID *int64
	Start   *time.Time
	End     *time.Time
}

type ExportResult struct {
	Path         string
	DownloadName string
	RowCount     int
}

// ExportSales queries the filtered records and writes them to a new
// timestamp-qualified workbook under the export directory.
func (s *Service) ExportSales(ctx context.Context, query ExportQuery) (ExportResult, error) {
	filter := repository.ExportFilter{StoreID: query.StoreID}
	// Both bounds or neither; a single bound applies no date filter.
	if query.Start != nil && query.End != nil {
		filter.From = query.Start
		filter.To = query.End
	}

	rows, err := s.repo.ExportSalesRows(ctx, filter)
	if err != nil {
		return ExportResult{}, err
	}

	filename := fmt.Sprintf("export_%s.xlsx", time.Now().Format("20060102150405"))
	path := filepath.Join(s.exportDir, filename)
	if err := excel.WriteSalesReport(path, rows); err != nil {
		return ExportResult{}, err
	}

	return ExportResult{
		Path:         path,
		DownloadName: "销售数据导出_" + filename,
		RowCount:     len(rows),
	}, nil
}
