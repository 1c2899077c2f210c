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

package config

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/intentlayer/intentlayer-sdk-go/internal/logger"
)

// LoadDotEnv loads a ".env" file from the current working directory
// into the process environment, if present. Variables already set in
// the environment are never overwritten. Missing-file is not an
// error: in production, configuration normally arrives through real
// environment variables, not a checked-in .env file.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.GetDefaultLogger().Warn("config: failed to load .env file", logger.Error(err))
	}
}
