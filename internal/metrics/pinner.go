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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PinAttempts tracks pinning HTTP requests by outcome.
	PinAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pinner",
			Name:      "attempts_total",
			Help:      "Total number of content pinning attempts",
		},
		[]string{"outcome"}, // success/retry/failed
	)

	// PinDuration tracks pinning request latency.
	PinDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pinner",
			Name:      "duration_seconds",
			Help:      "Content pinning request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

var (
	// LedgerTransactions tracks on-chain transactions by outcome.
	LedgerTransactions = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Total number of ledger transactions submitted",
		},
		[]string{"outcome"}, // success/reverted/sent/send_failed/no_receipt
	)

	// LedgerGasEstimate records the gas estimate used for submitted
	// transactions.
	LedgerGasEstimate = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "gas_estimate",
			Help:      "Gas estimate used for submitted ledger transactions",
			Buckets:   prometheus.ExponentialBuckets(21000, 2, 10),
		},
	)

	// LedgerReceiptWait tracks how long receipt polling takes.
	LedgerReceiptWait = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "receipt_wait_seconds",
			Help:      "Time spent polling for a transaction receipt",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
)
