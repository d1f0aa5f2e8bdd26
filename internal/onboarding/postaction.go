// Copyright 2026 The SalesDesk Authors
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

package onboarding

import (
	"context"
	"log/slog"

	"github.com/salesdesk/salesdesk/internal/observability/logger"
)

// postAction is a step that runs after the primary write has succeeded.
// Its failure is logged and never changes the operation's result.
type postAction struct {
	name string
	run  func(ctx context.Context) error
}

func runPostActions(ctx context.Context, actions ...postAction) {
	for _, a := range actions {
		if err := a.run(ctx); err != nil {
			slog.WarnContext(ctx, "best-effort post-action failed",
				logger.Component("onboarding"),
				logger.Operation(a.name),
				logger.Error(err),
			)
		}
	}
}
