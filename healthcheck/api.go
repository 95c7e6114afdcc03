// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package healthcheck pings a healthchecks.io check around library builds.
// Scheduled builds that stop running or start failing then raise an alert
// without any monitoring of our own.
package healthcheck

import (
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

var (
	ErrStatus = errors.New("status code is invalid")
)

// Start signals that a monitored run has begun, which lets the check
// measure run duration and alert on runs that never finish
func Start(id string) error {
	return ping(fmt.Sprintf("https://hc-ping.com/%s/start", id), "")
}

// Success signals that a monitored run finished cleanly
func Success(id string) error {
	return ping(fmt.Sprintf("https://hc-ping.com/%s", id), "")
}

// Fail signals that a monitored run failed; message is stored with the
// ping and shown in the check's event log
func Fail(id string, message string) error {
	return ping(fmt.Sprintf("https://hc-ping.com/%s/fail", id), message)
}

func ping(url string, body string) error {
	client := resty.New()

	req := client.R()
	if body != "" {
		req = req.SetHeader("Content-Type", "text/plain").SetBody(body)
	}

	resp, err := req.Post(url)
	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
