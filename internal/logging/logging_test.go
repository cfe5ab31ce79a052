// SPDX-License-Identifier: MIT
//
// Copyright 2026 Alberto Cavalcante. All rights reserved.
// Use of this source code is governed by a MIT-style license
// that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	old := DefaultLogger.GetLevel()
	defer DefaultLogger.SetLevel(old)

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, DefaultLogger.GetLevel())

	require.NoError(t, SetLevel(""))
	assert.Equal(t, DefaultLogLevel, DefaultLogger.GetLevel())

	assert.Error(t, SetLevel("loud"))
}

func TestSetFormat(t *testing.T) {
	oldFormatter := DefaultLogger.Formatter
	defer DefaultLogger.SetFormatter(oldFormatter)
	oldOut := DefaultLogger.Out
	defer SetOutput(oldOut)

	var buf bytes.Buffer
	SetOutput(&buf)

	require.NoError(t, SetFormat("json"))
	DefaultLogger.WithField("subsys", "test").Info("hello")
	assert.Contains(t, buf.String(), `"subsys":"test"`)

	assert.Error(t, SetFormat("xml"))
}
