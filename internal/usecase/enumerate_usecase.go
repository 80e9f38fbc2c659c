package usecase

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"

	"github.com/zinrai/netenum-go/internal/domain"
	"github.com/zinrai/netenum-go/internal/enumerator"
	"github.com/zinrai/netenum-go/internal/metrics"
)

var ErrNoRanges = errors.New("no CIDR ranges provided")

type Options struct {
	// Random buffers every address and writes them in shuffled order.
	Random bool
	// Seed makes Random reproducible; 0 picks a random seed.
	Seed uint64
	// Limit stops after that many addresses; 0 means no limit.
	Limit int
	// FlushEachLine flushes the writer after every address.
	FlushEachLine bool
}

type EnumerateUseCase struct {
	source  domain.RangeSource
	writer  domain.AddressWriter
	opts    Options
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewEnumerateUseCase(source domain.RangeSource, writer domain.AddressWriter, opts Options, log *slog.Logger, m *metrics.Metrics) *EnumerateUseCase {
	return &EnumerateUseCase{source: source, writer: writer, opts: opts, log: log, metrics: m}
}

// Open parses ranges into a new session.
func (uc *EnumerateUseCase) Open(ranges []string) (*enumerator.Session, error) {
	s, err := enumerator.New(ranges)
	if err != nil {
		uc.metrics.ParseErrors.Inc()
		return nil, err
	}
	uc.metrics.Sessions.Inc()
	uc.log.Debug("session opened", "ranges", len(ranges))
	return s, nil
}

// Run reads the ranges from the source and writes every address to the
// writer. It returns the number of addresses written. Cancelling ctx stops
// the run without an error.
func (uc *EnumerateUseCase) Run(ctx context.Context) (int, error) {
	ranges, err := uc.source.Ranges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read ranges: %w", err)
	}
	if len(ranges) == 0 {
		return 0, ErrNoRanges
	}

	s, err := uc.Open(ranges)
	if err != nil {
		return 0, err
	}

	uc.log.Info("enumerating", "ranges", len(ranges), "random", uc.opts.Random, "limit", uc.opts.Limit)

	var n int
	if uc.opts.Random {
		n, err = uc.writeShuffled(ctx, s)
	} else {
		n, err = uc.Write(ctx, s.All(), uc.writer, uc.opts.Limit)
	}
	if err != nil {
		return n, err
	}

	if err := uc.writer.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush output: %w", err)
	}
	uc.log.Info("enumeration finished", "addresses", n)
	return n, nil
}

// Write sends addresses from seq to w until seq ends, limit addresses
// were written (0 means no limit) or ctx is done.
func (uc *EnumerateUseCase) Write(ctx context.Context, seq iter.Seq[domain.Address], w domain.AddressWriter, limit int) (int, error) {
	var n int
	for addr := range seq {
		if ctx.Err() != nil {
			uc.log.Info("enumeration interrupted", "addresses", n)
			return n, nil
		}
		if err := uc.write(w, addr); err != nil {
			return n, err
		}
		n++
		if limit > 0 && n >= limit {
			break
		}
	}
	return n, nil
}

func (uc *EnumerateUseCase) writeShuffled(ctx context.Context, s *enumerator.Session) (int, error) {
	var addrs []domain.Address
	for addr := range s.All() {
		if ctx.Err() != nil {
			uc.log.Info("enumeration interrupted before shuffle", "buffered", len(addrs))
			return 0, nil
		}
		addrs = append(addrs, addr)
	}

	shuffle := rand.Shuffle
	if uc.opts.Seed != 0 {
		shuffle = rand.New(rand.NewPCG(uc.opts.Seed, uc.opts.Seed)).Shuffle
	}
	shuffle(len(addrs), func(i, j int) { addrs[i], addrs[j] = addrs[j], addrs[i] })

	if uc.opts.Limit > 0 && len(addrs) > uc.opts.Limit {
		addrs = addrs[:uc.opts.Limit]
	}

	for i, addr := range addrs {
		if ctx.Err() != nil {
			return i, nil
		}
		if err := uc.write(uc.writer, addr); err != nil {
			return i, err
		}
	}
	return len(addrs), nil
}

func (uc *EnumerateUseCase) write(w domain.AddressWriter, addr domain.Address) error {
	if err := w.WriteAddress(addr); err != nil {
		return fmt.Errorf("failed to write address %s: %w", addr, err)
	}
	uc.metrics.Addresses.Inc()
	if uc.opts.FlushEachLine {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush output: %w", err)
		}
	}
	return nil
}
