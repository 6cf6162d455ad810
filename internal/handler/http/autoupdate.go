// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-assembly-sync/internal/logger"
	"github.com/MKhiriev/go-assembly-sync/internal/utils"
	"github.com/MKhiriev/go-assembly-sync/models"
)

// autoupdate streams the resolved state of the requested models as
// newline-delimited JSON: the full state first, then one message per
// detected change. The stream stays open until the client disconnects.
// Failures after the stream started are sent as an error message.
func (h *Handler) autoupdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var reqs []models.ModelRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: %w", ErrInvalidJSON, err), "*Handler.autoupdate")
		return
	}
	if len(reqs) == 0 {
		h.writeError(w, r, ErrNoModelRequests, "*Handler.autoupdate")
		return
	}
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			h.writeError(w, r, err, "*Handler.autoupdate")
			return
		}
	}

	stream, err := utils.NewNDJSONWriter(w)
	if err != nil {
		h.writeError(w, r, err, "*Handler.autoupdate")
		return
	}

	ctx := r.Context()
	log.Info().Int("requests", len(reqs)).Str("collection", reqs[0].Collection).Msg("autoupdate stream opened")

	err = h.services.AutoupdateService.Subscribe(ctx, reqs, func(data models.AutoupdateModelData) error {
		return stream.Write(data)
	})
	if err != nil && ctx.Err() == nil {
		log.Err(err).Str("func", "*Handler.autoupdate").Msg("autoupdate stream failed")
		if writeErr := stream.Write(newErrorMessage(err)); writeErr != nil {
			log.Err(writeErr).Str("func", "*Handler.autoupdate").Msg("failed to send stream error")
		}
		return
	}

	log.Info().Msg("autoupdate stream closed")
}
