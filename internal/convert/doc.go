// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package convert holds the job executors: the GDAL pipeline that turns a
// land-cover GeoTIFF into a GeoJSONSeq file, and a no-op backend that only
// checks its input can be read.
package convert
