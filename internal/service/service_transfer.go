package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-farrier-sync/internal/adapter"
	"github.com/MKhiriev/go-farrier-sync/internal/app"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/internal/store"
	"github.com/MKhiriev/go-farrier-sync/internal/utils"
	"github.com/MKhiriev/go-farrier-sync/models"
	"golang.org/x/sync/errgroup"
)

type transferService struct {
	db        *store.Database
	adapter   adapter.ServerAdapter
	indicator Indicator
	now       func() time.Time

	logger *logger.Logger
}

// NewTransferService returns the pull side of the sync engine.
func NewTransferService(db *store.Database, serverAdapter adapter.ServerAdapter, indicator Indicator, logger *logger.Logger) TransferService {
	return &transferService{
		db:        db,
		adapter:   serverAdapter,
		indicator: indicator,
		now:       time.Now,
		logger:    logger,
	}
}

// Transfer implements [TransferService]. Tables are requested concurrently;
// a failing table does not stop the others. An auth-error cancels the
// tables still in flight and the returned error wraps [ErrAuthRequired].
func (s *transferService) Transfer(ctx context.Context, tables []schema.Table) (models.TransferResult, error) {
	result := models.TransferResult{OK: true}

	for _, t := range tables {
		if _, ok := t.Mirror(); !ok {
			return models.TransferResult{}, fmt.Errorf("%w: %s", ErrUnknownTable, t)
		}
	}

	if token := s.adapter.Token(); token != "" {
		if err := utils.CheckTokenExpiry(token, s.now()); errors.Is(err, utils.ErrTokenExpired) {
			result.OK = false
			result.AuthRequired = true
			return result, fmt.Errorf("%w: %w", ErrAuthRequired, err)
		}
	}

	reports := make([]models.TableReport, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			report, err := s.pullTable(gctx, table)
			reports[i] = report
			return err
		})
	}
	err := g.Wait()

	result.Tables = reports
	for _, r := range reports {
		if r.State == models.IndicatorRed {
			result.OK = false
		}
	}
	if err != nil {
		result.OK = false
		result.AuthRequired = errors.Is(err, ErrAuthRequired)
		return result, err
	}

	return result, nil
}

// pullTable fetches and applies one snapshot. Only an auth failure is
// returned as an error; everything else is recorded in the report.
func (s *transferService) pullTable(ctx context.Context, table schema.Table) (models.TableReport, error) {
	mirror, _ := table.Mirror()
	report := models.TableReport{Table: table, Store: mirror}
	s.indicator.Set(mirror, models.IndicatorInProgress)
	defer func() { s.indicator.Set(mirror, report.State) }()

	resp, err := s.adapter.Pull(ctx, models.PullRequest{Table: table})
	if err != nil {
		s.logger.Err(err).Str("func", "*transferService.pullTable").Str("table", string(table)).Msg("pull failed")
		report.State = models.IndicatorRed
		report.Messages = []string{userMessage(err)}
		if errors.Is(err, adapter.ErrAuth) {
			return report, fmt.Errorf("%w: %w", ErrAuthRequired, err)
		}
		return report, nil
	}

	switch resp.Status {
	case models.StatusSuccess:
		n, err := s.replace(ctx, mirror, resp)
		if err != nil {
			s.logger.Err(err).Str("func", "*transferService.pullTable").Str("table", string(table)).Msg("error replacing mirror")
			report.State = models.IndicatorRed
			report.Messages = []string{userMessage(err)}
			return report, nil
		}
		report.State = models.IndicatorGreen
		report.Records = n
		report.Messages = []string{fmt.Sprintf(app.MsgTransferred, n)}
	case models.StatusNoData:
		report.State = models.IndicatorNeutral
		report.Messages = []string{app.MsgNoData}
	case models.StatusNoUpdate:
		report.State = models.IndicatorYellow
		report.Messages = []string{app.MsgNothingToUpdate}
	default:
		report.State = models.IndicatorRed
		report.Messages = []string{failureMessage(models.Outcome{Status: resp.Status})}
	}

	return report, nil
}

// replace swaps the mirror for the snapshot and resets every max-id marker
// named in the response, all in one transaction.
func (s *transferService) replace(ctx context.Context, mirror schema.StoreName, resp models.PullResponse) (int, error) {
	records, err := resp.Records()
	if err != nil {
		return 0, err
	}

	scope := []schema.StoreName{mirror}
	for _, m := range resp.MaxID {
		desc, ok := schema.Lookup(m.Store)
		if !ok || !schema.IsMarker(desc.Name) {
			return 0, fmt.Errorf("%w: %s", ErrUnknownMarker, m.Store)
		}
		scope = append(scope, desc.Name)
	}

	err = s.db.Update(ctx, scope, func(tx *store.Tx) error {
		if err := tx.Clear(ctx, mirror); err != nil {
			return err
		}
		for _, rec := range records {
			if _, err := tx.Put(ctx, mirror, rec); err != nil {
				return err
			}
		}

		for _, m := range resp.MaxID {
			if m.ID == nil {
				continue
			}
			desc, _ := schema.Lookup(m.Store)
			if _, err := tx.Put(ctx, m.Store, models.Record{desc.KeyPath: models.Normalize(m.ID)}, store.ClearFirst()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(records), nil
}
