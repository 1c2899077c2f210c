// Copyright (C) 2025 intentlayer
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the SDK's
// network-facing components (the gateway client, the pinning client,
// and the ledger client) and for local key-material operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "intentlayer"

// Registry is the Prometheus registry every metric in this package is
// registered against. Embedding applications that run their own
// /metrics endpoint can pass this to promhttp.HandlerFor directly
// instead of using Handler/StartServer below.
var Registry = prometheus.NewRegistry()
