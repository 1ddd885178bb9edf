package search

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebSearch runs one search against opts.Provider and returns at most
// opts.Limit() validated results in provider order.
//
// Every failure is an *Error. Provider errors are forwarded unchanged; the
// transport layer contributes KindTransport and KindHTTP.
func WebSearch(ctx context.Context, opts Options) ([]Result, error) {
	if opts.Provider == nil {
		return nil, invalidInput("", "a search provider is required")
	}
	name := opts.Provider.Name()
	if opts.MaxResults != nil && *opts.MaxResults <= 0 {
		return nil, invalidInput(name, "max results must be positive, got %d", *opts.MaxResults)
	}
	limit := opts.Limit()

	log := zerolog.Ctx(ctx).With().
		Str("search_id", uuid.NewString()).
		Str("provider", name).
		Logger()
	ctx = log.WithContext(ctx)

	req, err := opts.Provider.BuildRequest(ctx, opts)
	if err != nil {
		err = classify(err, name, KindInvalidInput)
		log.Debug().Err(err).Msg("Failed to build search request")
		return nil, err
	}
	log.Debug().
		Str("query", opts.Query).
		Strs("arxiv_ids", opts.ArxivIDs).
		Int("max_results", limit).
		Str("url", req.URL.String()).
		Msg("Performing search")

	start := time.Now()
	body, err := fetch(ctx, opts.HTTPClient, name, req)
	if err != nil {
		log.Debug().Err(err).Dur("took", time.Since(start)).Msg("Search request failed")
		return nil, err
	}
	log.Debug().Int("bytes", len(body)).Dur("took", time.Since(start)).Msg("Received search response")

	parsed, err := opts.Provider.ParseResponse(body, opts)
	if err != nil {
		err = classify(err, name, KindParse)
		log.Debug().Err(err).Msg("Failed to parse search response")
		return nil, err
	}

	results := make([]Result, 0, min(len(parsed), limit))
	for _, result := range parsed {
		if !result.Valid() {
			continue
		}
		if result.Provider == "" {
			result.Provider = name
		}
		if result.Domain == "" {
			result.Domain = resolveSiteName(result.URL)
		}
		results = append(results, result)
	}
	if dropped := len(parsed) - len(results); dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Dropped invalid results")
	}
	results = truncateResults(results, limit)
	log.Debug().Int("count", len(results)).Msg("Search finished")
	return results, nil
}

// classify wraps errors that are not already an *Error so callers always
// receive a typed failure. A provider's *Error is copied before the provider
// name is filled in; it may be a shared sentinel.
func classify(err error, provider string, kind Kind) error {
	var se *Error
	if errors.As(err, &se) {
		if se.Provider != "" {
			return err
		}
		stamped := *se
		stamped.Provider = provider
		return &stamped
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}
