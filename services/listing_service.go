package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"

	"caravan-share/apiclient"
	"caravan-share/models"

	"golang.org/x/sync/errgroup"
)

const similarListingsLimit = 3

// ListingReader fetches read-only display data. None of its endpoints need
// the session cookie, so one reader is shared by all visitors.
type ListingReader struct {
	api *apiclient.Client
}

func NewListingReader(api *apiclient.Client) *ListingReader {
	return &ListingReader{api: api}
}

// ListingPage is everything the caravan detail page shows.
type ListingPage struct {
	Listing    models.Listing           `json:"caravan"`
	Facilities []models.PointOfInterest `json:"facilities"`
	Similar    []models.Listing         `json:"similar"`
	// Degraded is set when facilities or similar listings could not be loaded.
	Degraded bool `json:"degraded"`
}

// GetListing fetches one listing. A 404 satisfies errors.Is(err,
// apiclient.ErrNotFound); anything else is a *apiclient.TransportError.
func (r *ListingReader) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("services: empty listing id: %w", apiclient.ErrNotFound)
	}

	path := apiclient.CaravanPath(id)
	var listing models.Listing
	if err := r.api.GetJSON(ctx, path, nil, &listing); err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			return nil, fmt.Errorf("services: listing %s: %w", id, err)
		}
		return nil, asTransport("GET", path, err)
	}
	return &listing, nil
}

// GetListings fetches every listing. An empty result is not an error.
func (r *ListingReader) GetListings(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.api.GetJSON(ctx, apiclient.PathCaravans, nil, &listings); err != nil {
		return nil, asTransport("GET", apiclient.PathCaravans, err)
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	return listings, nil
}

// SearchListings returns the listings whose location contains query,
// case-insensitively. An empty query returns everything.
func (r *ListingReader) SearchListings(ctx context.Context, query string) ([]models.Listing, error) {
	listings, err := r.GetListings(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByLocation(listings, query), nil
}

func FilterByLocation(listings []models.Listing, query string) []models.Listing {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return listings
	}
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Location), q) {
			out = append(out, l)
		}
	}
	return out
}

// GetNearbyFacilities fetches points of interest for location. Failure is
// never fatal: it returns an empty slice and a *PartialDegradationError.
func (r *ListingReader) GetNearbyFacilities(ctx context.Context, location string) ([]models.PointOfInterest, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return []models.PointOfInterest{}, nil
	}

	q := url.Values{}
	q.Set("location", location)

	var pois []models.PointOfInterest
	if err := r.api.GetJSON(ctx, apiclient.PathPointsOfInterest, q, &pois); err != nil {
		return []models.PointOfInterest{}, &PartialDegradationError{Part: "facilities", Err: err}
	}
	if pois == nil {
		pois = []models.PointOfInterest{}
	}
	return pois, nil
}

// GetListingPage loads the listing, then its facilities and similar listings
// in parallel. Only the listing fetch can fail the page.
func (r *ListingReader) GetListingPage(ctx context.Context, id string) (*ListingPage, error) {
	listing, err := r.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}

	page := &ListingPage{
		Listing:    *listing,
		Facilities: []models.PointOfInterest{},
		Similar:    []models.Listing{},
	}

	var (
		facilitiesErr error
		similarErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page.Facilities, facilitiesErr = r.GetNearbyFacilities(gctx, listing.Location)
		return nil
	})
	g.Go(func() error {
		all, err := r.GetListings(gctx)
		if err != nil {
			similarErr = &PartialDegradationError{Part: "similar listings", Err: err}
			return nil
		}
		page.Similar = SimilarListings(*listing, all, similarListingsLimit)
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{facilitiesErr, similarErr} {
		if err != nil {
			page.Degraded = true
			log.Printf("listing page %s degraded: %v", id, err)
		}
	}
	return page, nil
}

// SimilarListings ranks candidates against target: same type scores 2, same
// owner scores 1. Zero-score candidates and target itself are dropped; ties
// keep the candidates' order.
func SimilarListings(target models.Listing, candidates []models.Listing, limit int) []models.Listing {
	type scored struct {
		score   int
		listing models.Listing
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == target.ID {
			continue
		}
		score := 0
		if strings.EqualFold(string(c.Type), string(target.Type)) {
			score += 2
		}
		if c.OwnerID == target.OwnerID {
			score++
		}
		if score > 0 {
			ranked = append(ranked, scored{score: score, listing: c})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]models.Listing, 0, len(ranked))
	for _, s := range ranked {
		out = append(out, s.listing)
	}
	return out
}
