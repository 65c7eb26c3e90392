/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"context"
	"errors"

	coerrors "github.com/yorkie-team/coedit/pkg/errors"
)

// EventLogLevel represents the severity level of a failed inbound event.
type EventLogLevel int

// Levels of failed inbound events.
const (
	EventLogDebug EventLogLevel = iota
	EventLogInfo
	EventLogWarn
	EventLogError
)

// String returns the string representation of EventLogLevel
func (l EventLogLevel) String() string {
	switch l {
	case EventLogDebug:
		return "debug"
	case EventLogInfo:
		return "info"
	case EventLogError:
		return "error"
	}
	return "warn"
}

// toEventLogLevel classifies the error of an inbound event. Events for
// unknown sessions or presences race with leaves and are expected, so they
// stay at debug. Malformed payloads and refused identities are warnings.
func toEventLogLevel(err error) EventLogLevel {
	if err == nil || errors.Is(err, context.Canceled) {
		return EventLogDebug
	}

	switch coerrors.StatusOf(err) {
	case coerrors.ErrCodeNotFound:
		return EventLogDebug
	case coerrors.ErrCodeAlreadyExists:
		return EventLogInfo
	case coerrors.ErrCodeInvalidArgument, coerrors.ErrCodeUnauthenticated,
		coerrors.ErrCodePermissionDenied, coerrors.ErrCodeResourceExhausted:
		return EventLogWarn
	case coerrors.ErrCodeInternal, coerrors.ErrCodeUnavailable:
		return EventLogError
	default:
		return EventLogWarn
	}
}

// LogEventError logs a failed inbound event with the level its error
// deserves.
func LogEventError(logger Logger, event string, err error) {
	const template = "EVENT: %q => %q"

	switch toEventLogLevel(err) {
	case EventLogDebug:
		logger.Debugf(template, event, err)
	case EventLogInfo:
		logger.Infof(template, event, err)
	case EventLogError:
		logger.Errorf(template, event, err)
	default:
		logger.Warnf(template, event, err)
	}
}
