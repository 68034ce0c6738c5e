// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.Disabled)

	l.Header("running repairs")
	l.Success("done")
	l.Warning("careful")
	l.Error("failed")
	l.Infof("scanned %d files", 3)

	out := buf.String()
	assert.Contains(t, out, "fixrc")
	assert.Contains(t, out, "running repairs")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "scanned 3 files")
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, zerolog.Disabled)

	ctx := NewContext(context.Background(), l)
	got := FromContext(ctx)
	require.Same(t, l, got)

	assert.Panics(t, func() {
		FromContext(context.Background())
	})
}
