// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package archive keeps every logged sample in SQLite, beyond the one week
// the history ring holds.
//
// The archive is optional. RetentionCleaner bounds its size by deleting
// samples older than a number of days.
package archive
