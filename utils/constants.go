// File: utils/constants.go
package utils

import "time"

// TourismCachePrefix is the prefix used for cached public tourism API responses.
const TourismCachePrefix = "tourism:"

// DeviceKeyPrefix namespaces the per-user device store hash.
const DeviceKeyPrefix = "device:"

// HealthCheckInterval is how often dependency health is sampled.
const HealthCheckInterval = 60 * time.Second
