// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package models

import "time"

// DiscoveryMethod records how a user found a movie they rated.
type DiscoveryMethod string

const (
	DiscoveryFriend            DiscoveryMethod = "Recommended by Friend"
	DiscoveryMovieQueue        DiscoveryMethod = "Recommended by MovieQueue"
	DiscoveryStreaming         DiscoveryMethod = "Recommended by Streaming Service"
	DiscoveryOnlineAdvertising DiscoveryMethod = "Online Advertising"
	DiscoverySocialMedia       DiscoveryMethod = "Social Media"
	DiscoveryOther             DiscoveryMethod = "Other"
)

// DiscoveryMethods lists the accepted discovery methods in display order.
func DiscoveryMethods() []DiscoveryMethod {
	return []DiscoveryMethod{
		DiscoveryFriend,
		DiscoveryMovieQueue,
		DiscoveryStreaming,
		DiscoveryOnlineAdvertising,
		DiscoverySocialMedia,
		DiscoveryOther,
	}
}

// Valid reports whether d is one of DiscoveryMethods.
func (d DiscoveryMethod) Valid() bool {
	for _, m := range DiscoveryMethods() {
		if d == m {
			return true
		}
	}
	return false
}

// Rating is a user's (:User)-[:RATED]->(:Movie) edge.
type Rating struct {
	Username  string          `json:"username"`
	MovieID   string          `json:"movie_id"`
	Score     float64         `json:"rating"`
	Discovery DiscoveryMethod `json:"discovery"`
	RatedAt   time.Time       `json:"rated_at"`
}

// RatingBucket is one bar of a user's rating distribution.
type RatingBucket struct {
	Rating float64 `json:"rating"`
	Count  int64   `json:"count"`
}

// GenreStat summarizes a user's ratings within one genre.
type GenreStat struct {
	Genre         string  `json:"genre"`
	Count         int64   `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// UserAnalytics is the rating summary shown on a user's profile.
type UserAnalytics struct {
	Username           string         `json:"username"`
	TotalRatings       int64          `json:"total_ratings"`
	AverageRating      *float64       `json:"average_rating"`
	RatingDistribution []RatingBucket `json:"rating_distribution"`
	GenreDistribution  []GenreStat    `json:"genre_distribution"`
}
