package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sefazor/menutranslator-backend/internal/config"
	"github.com/sefazor/menutranslator-backend/internal/metrics"
	"github.com/sefazor/menutranslator-backend/internal/models"
	"github.com/sefazor/menutranslator-backend/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultProviderTimeout = 60 * time.Second
	defaultMaxConcurrency  = 4
	historyLimit           = 100
)

// TranslationProvider translates text between two language codes.
type TranslationProvider interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

type TranslationOptions struct {
	Timeout        time.Duration
	MaxConcurrency int
}

type TranslationService struct {
	credits  *CreditService
	records  *repository.TranslationRepository
	menus    *repository.MenuRepository
	provider TranslationProvider
	opts     TranslationOptions
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewTranslationService(
	credits *CreditService,
	records *repository.TranslationRepository,
	menus *repository.MenuRepository,
	provider TranslationProvider,
	opts TranslationOptions,
	m *metrics.Metrics,
	log *zap.Logger,
) *TranslationService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultProviderTimeout
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	return &TranslationService{
		credits:  credits,
		records:  records,
		menus:    menus,
		provider: provider,
		opts:     opts,
		metrics:  m,
		log:      log.Named("translate"),
	}
}

type languageResult struct {
	lang string
	text string
	err  error
}

// Translate runs one translate action: validate, check the balance, call the
// provider per language, debit once every call has resolved, then record.
func (s *TranslationService) Translate(ctx context.Context, userID uint, req models.TranslateRequest) (*models.TranslateResponse, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}
	targets := normalizeLanguages(req.ToLanguages)
	if len(targets) == 0 {
		return nil, ErrNoTargetLanguages
	}
	from := strings.ToLower(strings.TrimSpace(req.FromLanguage))
	if from == "" {
		from = models.AutoDetectLanguage
	}

	if req.MenuID != nil {
		menu, err := s.menus.GetByID(ctx, *req.MenuID)
		if err != nil && !repository.IsNotFound(err) {
			return nil, fmt.Errorf("failed to load menu: %w", err)
		}
		if err != nil || menu.UserID != userID {
			return nil, fmt.Errorf("%w: menu %d", ErrNotFound, *req.MenuID)
		}
	}

	if _, err := s.credits.EnsureAccount(ctx, userID); err != nil {
		return nil, err
	}

	perLang := s.credits.CreditsPerLanguage()
	if _, err := s.credits.CheckAndReserve(ctx, userID, len(targets)*perLang); err != nil {
		s.metrics.TranslateAction("insufficient_credits")
		return nil, err
	}

	results := s.translateAll(ctx, text, from, targets)

	succeeded := 0
	for _, r := range results {
		if r.err == nil {
			succeeded++
		}
	}

	charge := succeeded * perLang
	if s.credits.ChargePolicy() == config.ChargePolicyAttempt {
		charge = len(targets) * perLang
	}

	if err := s.credits.CommitDebit(ctx, userID, charge); err != nil {
		s.metrics.TranslateAction("debit_rejected")
		s.log.Warn("translate action aborted at debit",
			zap.Uint("user_id", userID),
			zap.Int("charge", charge),
			zap.Error(err))
		return nil, err
	}

	batchID := uuid.NewString()
	resp := &models.TranslateResponse{
		BatchID:        batchID,
		Translations:   make(map[string]string, succeeded),
		CreditsCharged: charge,
	}

	records := make([]models.TranslationRecord, 0, len(results))
	for _, r := range results {
		record := models.TranslationRecord{
			BatchID:        batchID,
			UserID:         userID,
			MenuID:         req.MenuID,
			SourceLanguage: from,
			TargetLanguage: r.lang,
			SourceContent:  text,
		}
		if r.err != nil {
			record.Status = models.TranslationStatusError
			record.ErrorMessage = r.err.Error()
			if resp.Errors == nil {
				resp.Errors = make(map[string]string)
			}
			resp.Errors[r.lang] = publicErrorMessage(r.err)
		} else {
			record.Status = models.TranslationStatusCompleted
			record.TranslatedContent = r.text
			resp.Translations[r.lang] = r.text
		}
		records = append(records, record)
	}

	// The debit is committed; a lost history row must not cost the user the result.
	if err := s.records.CreateBatch(context.WithoutCancel(ctx), records); err != nil {
		s.log.Error("failed to persist translation records",
			zap.String("batch_id", batchID),
			zap.Uint("user_id", userID),
			zap.Int("records", len(records)),
			zap.Error(err))
	}

	if account, err := s.credits.GetAccount(ctx, userID); err == nil {
		resp.CreditsAvailable = account.Available()
	}

	switch {
	case succeeded == len(targets):
		s.metrics.TranslateAction("success")
	case succeeded == 0:
		s.metrics.TranslateAction("failed")
	default:
		s.metrics.TranslateAction("partial")
	}

	s.log.Info("translate action completed",
		zap.String("batch_id", batchID),
		zap.Uint("user_id", userID),
		zap.Int("languages", len(targets)),
		zap.Int("succeeded", succeeded),
		zap.Int("charged", charge))

	return resp, nil
}

// translateAll calls the provider for every target with bounded parallelism.
// Results keep the order of targets.
func (s *TranslationService) translateAll(ctx context.Context, text, from string, targets []string) []languageResult {
	results := make([]languageResult, len(targets))

	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)

	for i, lang := range targets {
		i, lang := i, lang
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()

			start := time.Now()
			out, err := s.provider.Translate(callCtx, text, from, lang)
			if err == nil && strings.TrimSpace(out) == "" {
				err = errors.New("provider returned an empty translation")
			}

			status := models.TranslationStatusCompleted
			if err != nil {
				status = models.TranslationStatusError
				err = providerError("translate "+lang, err)
				s.log.Warn("translation failed",
					zap.String("from", from),
					zap.String("to", lang),
					zap.Error(err))
			}
			s.metrics.LanguageResult(status, time.Since(start).Seconds())

			results[i] = languageResult{lang: lang, text: out, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *TranslationService) History(ctx context.Context, userID uint) ([]models.TranslationHistoryItem, error) {
	records, err := s.records.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}
	items := make([]models.TranslationHistoryItem, 0, len(records))
	for i := range records {
		items = append(items, toHistoryItem(&records[i]))
	}
	return items, nil
}

func (s *TranslationService) GetTranslation(ctx context.Context, userID, id uint) (*models.TranslationHistoryItem, error) {
	record, err := s.records.GetByIDForUser(ctx, id, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	item := toHistoryItem(record)
	return &item, nil
}

func toHistoryItem(r *models.TranslationRecord) models.TranslationHistoryItem {
	item := models.TranslationHistoryItem{
		ID:                r.ID,
		MenuID:            r.MenuID,
		SourceLanguage:    r.SourceLanguage,
		TargetLanguage:    r.TargetLanguage,
		SourceContent:     r.SourceContent,
		TranslatedContent: r.TranslatedContent,
		ErrorMessage:      r.ErrorMessage,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
	}
	if r.Menu != nil {
		item.MenuName = r.Menu.Name
	}
	return item
}

// normalizeLanguages lowercases, trims and de-duplicates codes, keeping first-seen order.
func normalizeLanguages(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func publicErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "translation timed out"
	}
	return "translation failed"
}
