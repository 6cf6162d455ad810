package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-assembly-sync/models"
)

// ParseSubscriptions parses "collection:1,2,3[@fieldset]" entries.
func ParseSubscriptions(entries []string) ([]models.SimplifiedModelRequest, error) {
	requests := make([]models.SimplifiedModelRequest, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		request, err := parseSubscription(entry)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func parseSubscription(entry string) (models.SimplifiedModelRequest, error) {
	collection, rest, ok := strings.Cut(entry, ":")
	if !ok || collection == "" || rest == "" {
		return models.SimplifiedModelRequest{}, fmt.Errorf("%w: %q", ErrInvalidSubscriptionConfigs, entry)
	}

	idList, fieldset, _ := strings.Cut(rest, "@")

	var ids []int
	for _, raw := range strings.Split(idList, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			return models.SimplifiedModelRequest{}, fmt.Errorf("%w: bad id %q in %q", ErrInvalidSubscriptionConfigs, raw, entry)
		}
		ids = append(ids, id)
	}

	return models.SimplifiedModelRequest{
		Collection: collection,
		IDs:        ids,
		Fieldset:   fieldset,
	}, nil
}
