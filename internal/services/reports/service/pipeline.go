package service

import (
	"context"
	"path"
	"time"

	"golang.org/x/sync/errgroup"

	"reportrelay/internal/core/tabular"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	ptime "reportrelay/internal/platform/time"
	"reportrelay/internal/services/reports/domain"
	"reportrelay/internal/services/reports/guardrails"
)

// DayLayout is the date format of the ads day
const DayLayout = "2006-01-02"

// SpendHeader is the header line of the ads spend file
var SpendHeader = []string{"Campaigns", "Date", "Spend"}

// Run acquires, materializes and delivers one report kind
// the outcome is always recorded, success or not
func (s *Svc) Run(ctx context.Context, kind domain.Kind, o domain.Override) (domain.Result, error) {
	res, out, err := s.run(ctx, kind, o)
	s.record(ctx, out)
	return res, err
}

// RunCycle runs every kind concurrently; a failing kind never stops the others
func (s *Svc) RunCycle(ctx context.Context, reason, day string) domain.CycleReport {
	start := s.now()
	rep := domain.CycleReport{
		RunID:     s.newID(),
		Reason:    reason,
		Day:       day,
		StartedAt: start,
		Kinds:     make([]domain.KindReport, len(domain.Kinds)),
	}
	if rep.Day == "" {
		rep.Day = start.UTC().Format(DayLayout)
	}
	ctx = logger.With(ctx, "cycle_id", rep.RunID)
	logger.C(ctx).Info().Str("reason", reason).Str("day", rep.Day).Msg("cycle start")

	var g errgroup.Group
	for i, kind := range domain.Kinds {
		g.Go(func() error {
			o := domain.Override{}
			if kind == domain.KindAdSpend {
				o.Date = rep.Day
			}
			res, out, err := s.run(ctx, kind, o)
			s.record(ctx, out)
			kr := domain.KindReport{Kind: kind, Outcome: out, Err: err}
			if err == nil {
				kr.Result = &res
			}
			rep.Kinds[i] = kr
			return nil
		})
	}
	_ = g.Wait()

	rep.DurationMs = ptime.Ms(s.now().Sub(start))
	logger.C(ctx).Info().Int("failed", rep.Failed()).Int64("duration_ms", rep.DurationMs).Msg("cycle done")
	return rep
}

func (s *Svc) run(ctx context.Context, kind domain.Kind, o domain.Override) (domain.Result, domain.RunOutcome, error) {
	runID := s.newID()
	ctx = logger.WithRun(ctx, runID, string(kind))
	start := s.now()

	var (
		res domain.Result
		err error
	)
	switch {
	case kind.Polled():
		res, err = s.runOrders(ctx, kind, o)
	case kind == domain.KindAdSpend:
		res, err = s.runAds(ctx, o)
	default:
		err = perr.InvalidArgf("unknown report kind %q", kind)
	}
	res.Kind = kind
	res.RunID = runID

	out := domain.RunOutcome{
		RunID:      runID,
		Phase:      kind.Phase(),
		DurationMs: ptime.Ms(s.now().Sub(start)),
		At:         s.now(),
	}
	if err != nil {
		out.Status = domain.StatusFail
		out.ErrorKind = perr.CodeOf(err).String()
		out.ErrorDetail = err.Error()
		out.Meta = map[string]any{}
		if !res.ReferenceID.Empty() {
			out.Meta["referenceId"] = res.ReferenceID.String()
		}
		if res.Day != "" {
			out.Meta["day"] = res.Day
		}
		logger.C(ctx).Error().Err(err).Str("error_kind", out.ErrorKind).Msg("run failed")
		return res, out, err
	}

	out.Status = domain.StatusSuccess
	out.Meta = map[string]any{"rows": res.Rows, "backend": res.Sink.Status()}
	if kind.Polled() {
		out.Meta["referenceId"] = res.ReferenceID.String()
		out.Meta["documentId"] = res.DocumentID
	} else {
		out.Meta["day"] = res.Day
	}
	logger.C(ctx).Info().Int("rows", res.Rows).Str("file", res.FileName).Int64("duration_ms", out.DurationMs).Msg("run delivered")
	return res, out, nil
}

func (s *Svc) runOrders(ctx context.Context, kind domain.Kind, o domain.Override) (domain.Result, error) {
	var res domain.Result

	ref, err := s.acquire(ctx, kind, o.Reference)
	if err != nil {
		return res, err
	}
	res.ReferenceID = ref
	ctx = logger.With(ctx, "ref", ref.String())

	ready, err := s.tracker.EnsureReady(ctx, ref, s.config.PollInterval, s.config.PollAttempts)
	if err != nil {
		return res, err
	}

	raw, recs := ready.Raw, ready.Records
	if !ready.Direct() {
		res.DocumentID = ready.DocumentID
		raw, err = s.download(ctx, ready.DocumentID)
		if err != nil {
			return res, err
		}
		if recs, err = tabular.DecodeStrict(raw); err != nil {
			return res, err
		}
	}
	res.Rows = len(recs)

	fields := map[string]string{}
	if s.config.ShopID != "" {
		fields["shopId"] = s.config.ShopID
	}
	if kind == domain.KindNewOrders {
		fields["type"] = "New"
	}
	return s.deliver(ctx, res, domain.Upload{
		Kind:     kind,
		FileName: domain.FileName(kind, ref, ""),
		Content:  raw,
		Fields:   fields,
	})
}

func (s *Svc) runAds(ctx context.Context, o domain.Override) (domain.Result, error) {
	var res domain.Result

	day := o.Date
	if day == "" {
		day = s.now().UTC().Format(DayLayout)
	}
	if _, err := time.Parse(DayLayout, day); err != nil {
		return res, perr.WithField(perr.InvalidArgf("date must be YYYY-MM-DD, got %q", day), "date")
	}
	res.Day = day
	ctx = logger.With(ctx, "day", day)

	rows, err := FetchAll(ctx, s.config.PageSize, func(ctx context.Context, offset, size int) (domain.Page[domain.CampaignSpendRow], error) {
		pctx, cancel := guardrails.ForPage(ctx, s.config.Timeouts)
		defer cancel()
		return s.deps.Spend.SpendPage(pctx, day, offset, size)
	})
	if err != nil {
		return res, err
	}
	res.Rows = len(rows)

	fields := map[string]string{"day": day}
	if s.config.ShopID != "" {
		fields["shopId"] = s.config.ShopID
	}
	return s.deliver(ctx, res, domain.Upload{
		Kind:     domain.KindAdSpend,
		FileName: domain.FileName(domain.KindAdSpend, "", day),
		Content:  EncodeSpend(rows),
		Fields:   fields,
	})
}

// EncodeSpend renders campaign rows as the ads spend file
func EncodeSpend(rows []domain.CampaignSpendRow) string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.CampaignName, r.Date, r.Spend.String()}
	}
	return tabular.Encode(SpendHeader, out)
}

// acquire picks the override, a fresh reference, or the cached one in that order
func (s *Svc) acquire(ctx context.Context, kind domain.Kind, override domain.ReferenceID) (domain.ReferenceID, error) {
	if !override.Empty() {
		return override, nil
	}

	rctx, cancel := guardrails.ForRequest(ctx, s.config.Timeouts)
	ref, err := s.deps.Reports.RequestReport(rctx, domain.RequestFor(kind))
	cancel()
	if err == nil && ref.Empty() {
		err = perr.Newf(perr.ErrorCodeRequestFailed, "report request for %s returned no reference", kind)
	}
	if err == nil {
		if werr := s.deps.Refs.Put(ctx, kind, ref); werr != nil {
			logger.C(ctx).Warn().Err(werr).Msg("reference cache write failed")
		}
		return ref, nil
	}

	cached, ok, cerr := s.deps.Refs.Get(ctx, kind)
	if cerr != nil {
		logger.C(ctx).Warn().Err(cerr).Msg("reference cache read failed")
	}
	if ok && !cached.Empty() {
		logger.C(ctx).Warn().Err(err).Str("ref", cached.String()).Msg("report request failed, using cached reference")
		return cached, nil
	}
	return "", perr.Wrapf(err, perr.ErrorCodeNoReference, "no reference for %s", kind)
}

func (s *Svc) download(ctx context.Context, documentID string) (string, error) {
	dctx, cancel := guardrails.ForDownload(ctx, s.config.Timeouts)
	defer cancel()
	raw, err := s.deps.Reports.Download(dctx, documentID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeDownload) {
			return "", err
		}
		return "", perr.Wrapf(err, perr.ErrorCodeDownload, "download of document %s failed", documentID)
	}
	return raw, nil
}

func (s *Svc) deliver(ctx context.Context, res domain.Result, u domain.Upload) (domain.Result, error) {
	res.FileName = u.FileName

	if s.deps.Archive != nil && s.config.ArchiveOn {
		key := path.Join(string(u.Kind.Phase()), s.now().UTC().Format(DayLayout), u.FileName)
		if loc, err := s.deps.Archive.Put(ctx, key, u.Content); err != nil {
			logger.C(ctx).Warn().Err(err).Str("key", key).Msg("archive copy failed")
		} else {
			res.Archived = loc
		}
	}

	uctx, cancel := guardrails.ForUpload(ctx, s.config.Timeouts)
	defer cancel()
	sr, err := s.deps.Sink.Upload(uctx, u)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeSink) {
			return res, err
		}
		return res, perr.Wrapf(err, perr.ErrorCodeSink, "upload of %s failed", u.FileName)
	}
	res.Sink = sr
	return res, nil
}

// record hands the outcome to the recorder without making the caller wait
func (s *Svc) record(ctx context.Context, out domain.RunOutcome) {
	if s.deps.Outcomes == nil {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		lctx, cancel := guardrails.ForLog(context.WithoutCancel(ctx), s.config.Timeouts)
		defer cancel()
		if err := s.deps.Outcomes.Record(lctx, out); err != nil {
			logger.C(ctx).Debug().Err(err).Str("phase", string(out.Phase)).Msg("outcome not recorded")
		}
	}()
}
