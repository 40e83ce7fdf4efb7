package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"rubconv-service/internal/domain"
	"rubconv-service/internal/host"

	"go.uber.org/zap"
)

// ConverterService is the session state container. The store is the
// source of truth shared with other processes: reads adopt the stored state,
// and every mutation is applied to the stored state through an atomic
// update. Derived figures are recomputed on each read.
type ConverterService struct {
	market    MarketProvider
	reference ReferenceProvider
	depth     DepthProvider
	store     StateStore
	archive   QuoteArchive
	host      host.Capabilities
	pair      domain.Pair
	clock     Clock
	log       *zap.Logger

	mu    sync.Mutex
	state domain.State
	rev   uint64 // bumped whenever a mutation replaces state
	dirty bool   // the last mutation was not persisted

	// serializes local mutations; reads never wait on it
	commitMu sync.Mutex

	bg sync.WaitGroup
}

type Option func(*ConverterService)

func WithClock(c Clock) Option { return func(s *ConverterService) { s.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(s *ConverterService) { s.log = l } }
func WithHost(h host.Capabilities) Option { return func(s *ConverterService) { s.host = h } }
func WithArchive(a QuoteArchive) Option { return func(s *ConverterService) { s.archive = a } }
func WithPair(p domain.Pair) Option { return func(s *ConverterService) { s.pair = p } }

// NewConverterService reads the persisted session. A missing or unreadable
// blob is logged and replaced with defaults.
func NewConverterService(ctx context.Context, store StateStore, market MarketProvider, reference ReferenceProvider, depth DepthProvider, opts ...Option) *ConverterService {
	s := &ConverterService{
		market:    market,
		reference: reference,
		depth:     depth,
		store:     store,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.host == nil {
		s.host = host.Noop{}
	}
	if s.archive == nil {
		s.archive = NoopArchive{}
	}
	if s.pair.Symbol == "" {
		s.pair = domain.DefaultPair
	}
	s.state = s.load(ctx)
	if theme, ok := s.host.Theme(); ok && theme != s.state.Preferences.Theme {
		_, _ = s.mutate(ctx, func(st *domain.State) bool {
			if st.Preferences.Theme == theme {
				return false
			}
			st.Preferences.Theme = theme
			return true
		})
	}
	s.publish(domain.Derive(s.state.Clone(), s.pair, s.clock.Now()))
	return s
}

func (s *ConverterService) load(ctx context.Context) domain.State {
	st, err := s.read(ctx)
	switch {
	case err == nil:
		// a previous process may have died mid-fetch
		st.Loading = false
		return st
	case errors.Is(err, ErrNotFound):
		s.log.Info("state.load_empty")
	case errors.Is(err, errDecode):
		s.log.Warn("state.decode_failed", zap.Error(err))
	default:
		s.log.Warn("state.load_failed", zap.Error(err))
	}
	return domain.DefaultState()
}

var errDecode = errors.New("decode state")

func decode(blob []byte) (domain.State, error) {
	var st domain.State
	if err := json.Unmarshal(blob, &st); err != nil {
		return domain.State{}, fmt.Errorf("%w: %w", errDecode, err)
	}
	st.Normalize()
	return st, nil
}

func (s *ConverterService) read(ctx context.Context) (domain.State, error) {
	blob, err := s.store.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	return decode(blob)
}

// sync adopts the stored state, which may have been written by another
// process. Unpersisted local changes and failed reads keep the in-memory
// state.
func (s *ConverterService) sync(ctx context.Context) {
	s.mu.Lock()
	rev, dirty := s.rev, s.dirty
	s.mu.Unlock()
	if dirty {
		return
	}
	st, err := s.read(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Debug("state.sync_failed", zap.Error(err))
		}
		return
	}
	s.mu.Lock()
	if s.rev == rev {
		s.state = st
	}
	s.mu.Unlock()
}

// mutate applies fn to the stored state and persists the result atomically,
// so a concurrent writer in another process is never overwritten. fn may run
// more than once and must only touch st. When the store is unavailable fn is
// applied to the in-memory state, which then wins over the store until a
// later mutation persists it.
func (s *ConverterService) mutate(ctx context.Context, fn func(st *domain.State) bool) (domain.View, error) {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	base, dirty := s.state.Clone(), s.dirty
	s.mu.Unlock()

	var (
		next    domain.State
		applied bool
		changed bool
	)
	err := s.store.Update(ctx, func(cur []byte) ([]byte, error) {
		next, applied = base.Clone(), true
		if cur != nil && !dirty {
			if st, err := decode(cur); err == nil {
				next = st
			} else {
				s.log.Warn("state.decode_failed", zap.Error(err))
			}
		}
		changed = fn(&next)
		if !changed {
			return nil, nil
		}
		return json.Marshal(next)
	})
	if err != nil && !applied {
		next = base.Clone()
		changed = fn(&next)
	}

	s.mu.Lock()
	switch {
	case err == nil && (changed || !dirty):
		s.state, s.dirty = next, false
		s.rev++
	case err != nil && changed:
		s.state, s.dirty = next, true
		s.rev++
	}
	v := domain.Derive(s.state.Clone(), s.pair, s.clock.Now())
	s.mu.Unlock()

	if !changed {
		return v, nil
	}
	s.publish(v)
	if err != nil {
		s.log.Warn("state.save_failed", zap.Error(err))
		return v, fmt.Errorf("save state: %w", err)
	}
	return v, nil
}

func (s *ConverterService) publish(v domain.View) {
	label, visible := MainButtonLabel(v)
	s.host.SetMainButton(label, visible)
}

func (s *ConverterService) snapshot(ctx context.Context) domain.State {
	s.sync(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View returns the session together with its derived figures.
func (s *ConverterService) View(ctx context.Context) domain.View {
	return domain.Derive(s.snapshot(ctx), s.pair, s.clock.Now())
}

// Pair is the tracked order-book pair.
func (s *ConverterService) Pair() domain.Pair { return s.pair }

// AutoFetch reports the persisted auto-fetch preference.
func (s *ConverterService) AutoFetch(ctx context.Context) bool {
	return s.snapshot(ctx).Preferences.AutoFetch
}

// PreferencesPatch is a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	Theme         *string  `json:"theme,omitempty"`
	AutoFetch     *bool    `json:"auto_fetch,omitempty"`
	SpreadEnabled *bool    `json:"spread_enabled,omitempty"`
	SpreadPercent *float64 `json:"spread_percent,omitempty"`
	Source        *string  `json:"source,omitempty"`
	CustomRate    *string  `json:"custom_rate,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	Amount        *string  `json:"amount,omitempty"`
}

const maxInputLen = 64

func (p PreferencesPatch) apply(cur domain.Preferences) (domain.Preferences, error) {
	next := cur
	if p.Theme != nil {
		switch domain.Theme(*p.Theme) {
		case domain.ThemeLight, domain.ThemeDark:
			next.Theme = domain.Theme(*p.Theme)
		default:
			return cur, fmt.Errorf("%w: unknown theme %q", ErrBadRequest, *p.Theme)
		}
	}
	if p.AutoFetch != nil {
		next.AutoFetch = *p.AutoFetch
	}
	if p.SpreadEnabled != nil {
		next.SpreadEnabled = *p.SpreadEnabled
	}
	if p.SpreadPercent != nil {
		if !domain.ValidSpread(*p.SpreadPercent) {
			return cur, fmt.Errorf("%w: spread must be in [0,100)", ErrBadRequest)
		}
		next.SpreadPercent = *p.SpreadPercent
	}
	if p.Source != nil {
		src := domain.Source(*p.Source)
		if !src.Valid() {
			return cur, fmt.Errorf("%w: unknown source %q", ErrBadRequest, *p.Source)
		}
		next.Source = src
	}
	if p.Currency != nil {
		c, ok := domain.NormalizeCurrency(*p.Currency)
		if !ok {
			return cur, fmt.Errorf("%w: %w %q", ErrBadRequest, domain.ErrUnsupportedCurrency, *p.Currency)
		}
		next.Currency = c
	}
	if p.CustomRate != nil {
		if len(*p.CustomRate) > maxInputLen {
			return cur, fmt.Errorf("%w: custom rate too long", ErrBadRequest)
		}
		next.CustomRate = *p.CustomRate
	}
	if p.Amount != nil {
		if len(*p.Amount) > maxInputLen {
			return cur, fmt.Errorf("%w: amount too long", ErrBadRequest)
		}
		next.Amount = *p.Amount
	}
	return next, nil
}

// UpdatePreferences applies a partial update. Changing the currency or the
// source with auto-fetch on starts a background refresh.
func (s *ConverterService) UpdatePreferences(ctx context.Context, patch PreferencesPatch) (domain.View, error) {
	var (
		applyErr error
		retrig   bool
	)
	v, err := s.mutate(ctx, func(st *domain.State) bool {
		next, err := patch.apply(st.Preferences)
		if err != nil {
			applyErr = err
			return false
		}
		if next == st.Preferences {
			return false
		}
		retrig = next.AutoFetch &&
			(next.Currency != st.Preferences.Currency || next.Source != st.Preferences.Source)
		st.Preferences = next
		return true
	})
	if applyErr != nil {
		return domain.View{}, applyErr
	}
	if retrig {
		s.refreshInBackground(ctx)
	}
	return v, err
}

// refreshInBackground fires a refresh that outlives the caller's request.
func (s *ConverterService) refreshInBackground(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		_ = s.Refresh(ctx)
	}()
}

// Wait blocks until background refreshes finish.
func (s *ConverterService) Wait() { s.bg.Wait() }

// Save appends the current calculation to the history. It is a no-op
// returning false when the rate is unresolved.
func (s *ConverterService) Save(ctx context.Context) (domain.HistoryEntry, bool, error) {
	var (
		entry domain.HistoryEntry
		saved bool
	)
	_, err := s.mutate(ctx, func(st *domain.State) bool {
		v := domain.Derive(*st, s.pair, s.clock.Now())
		if !v.Resolution.Resolved {
			return false
		}
		entry = domain.HistoryEntry{
			Timestamp: s.clock.Now(),
			Currency:  st.Preferences.Currency,
			Rate:      v.Resolution.Rate,
			RubResult: v.RubResult,
		}
		if v.Amount != nil {
			entry.Amount = *v.Amount
		}
		st.History = st.History.Push(entry)
		saved = true
		return true
	})
	if saved {
		s.host.Haptic(host.HapticSuccess)
	}
	return entry, saved, err
}

// History returns saved calculations, newest first.
func (s *ConverterService) History(ctx context.Context) domain.History {
	return s.snapshot(ctx).History
}

// QuoteHistory lists archived provider quotes for a currency.
func (s *ConverterService) QuoteHistory(ctx context.Context, currency string, limit int) ([]domain.QuoteHistory, error) {
	c, ok := domain.NormalizeCurrency(currency)
	if !ok {
		return nil, fmt.Errorf("%w: %w %q", ErrBadRequest, domain.ErrUnsupportedCurrency, currency)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.archive.List(ctx, c, limit)
}

// ConvertInput overrides the session preferences for a one-off conversion.
type ConvertInput struct {
	Amount   string
	Currency *string
	Source   *string
	Spread   *float64
	Custom   *string
}

// Conversion is the outcome of a one-off conversion.
type Conversion struct {
	Currency   string            `json:"currency"`
	Source     domain.Source     `json:"source"`
	Amount     *float64          `json:"amount"`
	Resolution domain.Resolution `json:"resolution"`
	RubResult  float64           `json:"rub_result"`
	Reference  *float64          `json:"reference_rate"`
	Delta      *domain.Delta     `json:"delta"`
	Label      string            `json:"label"`
}

// Convert runs the resolver against the current quotes without touching
// the session.
func (s *ConverterService) Convert(ctx context.Context, in ConvertInput) (Conversion, error) {
	st := s.snapshot(ctx)
	patch := PreferencesPatch{Amount: &in.Amount, Currency: in.Currency, Source: in.Source, CustomRate: in.Custom}
	if in.Spread != nil {
		on := *in.Spread > 0
		patch.SpreadEnabled = &on
		patch.SpreadPercent = in.Spread
	}
	prefs, err := patch.apply(st.Preferences)
	if err != nil {
		return Conversion{}, err
	}
	if in.Custom == nil {
		prefs.CustomRate = ""
	}
	st.Preferences = prefs
	v := domain.Derive(st, s.pair, s.clock.Now())
	label, _ := MainButtonLabel(v)
	return Conversion{
		Currency:   prefs.Currency,
		Source:     prefs.Source,
		Amount:     v.Amount,
		Resolution: v.Resolution,
		RubResult:  v.RubResult,
		Reference:  v.Reference,
		Delta:      v.Delta,
		Label:      label,
	}, nil
}

// Ping checks every backing store that supports it.
func (s *ConverterService) Ping(ctx context.Context) error {
	var errs []error
	if p, ok := s.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("state store: %w", err))
		}
	}
	if p, ok := s.archive.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("quote archive: %w", err))
		}
	}
	return errors.Join(errs...)
}
