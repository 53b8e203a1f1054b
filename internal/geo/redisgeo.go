package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"rentshare_backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

const geoKey = "listings:geo"

var ErrInvalidCoordinates = errors.New("invalid coordinates")

type Point struct {
	Latitude  float64
	Longitude float64
}

// NearbyListing is a listing id with the distance to its closest indexed location.
type NearbyListing struct {
	ListingID  string
	DistanceKm float64
}

// ListingLocator keeps listing locations in a Redis GEO set.
// A listing with several locations has one member per location.
type ListingLocator struct {
	rdb *redis.Client
}

func NewListingLocator(rdb *redis.Client) *ListingLocator {
	return &ListingLocator{rdb: rdb}
}

func membersKey(listingID string) string {
	return fmt.Sprintf("listings:geo:members:%s", listingID)
}

func memberName(listingID string, idx int) string {
	return fmt.Sprintf("listing:%s:%d", listingID, idx)
}

func parseListingMember(member string) (string, error) {
	parts := strings.Split(member, ":")
	if len(parts) != 3 || parts[0] != "listing" || parts[1] == "" {
		return "", fmt.Errorf("invalid member %q", member)
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return "", fmt.Errorf("invalid member %q", member)
	}
	return parts[1], nil
}

func ValidPoint(p Point) bool {
	if p.Longitude < -180 || p.Longitude > 180 || p.Latitude < -85.05112878 || p.Latitude > 85.05112878 {
		return false
	}
	return !(math.Abs(p.Longitude) < 1e-6 && math.Abs(p.Latitude) < 1e-6)
}

// Index replaces every indexed location of the listing. Invalid points are skipped.
func (l *ListingLocator) Index(ctx context.Context, listingID string, points []Point) error {
	if err := l.Remove(ctx, listingID); err != nil {
		return err
	}

	var locations []*redis.GeoLocation
	var names []interface{}
	for i, p := range points {
		if !ValidPoint(p) {
			logger.CtxWarn(ctx, "geo: skip invalid coordinates", "listing_id", listingID, "lat", p.Latitude, "lng", p.Longitude)
			continue
		}
		name := memberName(listingID, i)
		locations = append(locations, &redis.GeoLocation{Name: name, Longitude: p.Longitude, Latitude: p.Latitude})
		names = append(names, name)
	}
	if len(locations) == 0 {
		return nil
	}

	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.GeoAdd(ctx, geoKey, locations...)
		pipe.SAdd(ctx, membersKey(listingID), names...)
		return nil
	})
	return err
}

func (l *ListingLocator) Remove(ctx context.Context, listingID string) error {
	names, err := l.rdb.SMembers(ctx, membersKey(listingID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	members := make([]interface{}, len(names))
	for i, n := range names {
		members[i] = n
	}
	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, geoKey, members...)
		pipe.Del(ctx, membersKey(listingID))
		return nil
	})
	return err
}

// Nearby returns listings within radiusKm sorted by distance, at most limit entries.
func (l *ListingLocator) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyListing, error) {
	if !ValidPoint(Point{Latitude: lat, Longitude: lng}) {
		return nil, ErrInvalidCoordinates
	}

	// several members can belong to one listing, over-fetch before deduplication
	res, err := l.rdb.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lng,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit * 4,
		},
		WithDist: true,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	return dedupe(ctx, res, limit), nil
}

// dedupe keeps the first (closest) hit per listing; res is sorted ascending.
func dedupe(ctx context.Context, res []redis.GeoLocation, limit int) []NearbyListing {
	seen := make(map[string]bool, len(res))
	out := make([]NearbyListing, 0, limit)
	for _, item := range res {
		id, err := parseListingMember(item.Name)
		if err != nil {
			logger.CtxWarn(ctx, "geo: skip invalid member", "member", item.Name, "error", err)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, NearbyListing{ListingID: id, DistanceKm: item.Dist})
		if len(out) == limit {
			break
		}
	}
	return out
}
