package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 10 * time.Second

// apiError is the error envelope written by the service.
type apiError struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// get fetches path with query from the service and returns the raw body.
func get(path string, query url.Values) ([]byte, error) {
	target := strings.TrimRight(apiAddr, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	agent := fiber.Get(target).Timeout(requestTimeout)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if err := agent.Parse(); err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("request %s: %w", target, errors.Join(errs...))
	}
	if status >= fiber.StatusBadRequest {
		var envelope apiError
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
			return nil, fmt.Errorf("%s: %s (%s)", target, envelope.Error.Message, envelope.Error.Code)
		}
		return nil, fmt.Errorf("%s: unexpected status %d", target, status)
	}
	return body, nil
}

// getData fetches path and decodes its data member into out.
func getData(path string, query url.Values, out any) ([]byte, error) {
	body, err := get(path, query)
	if err != nil {
		return nil, err
	}
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return envelope.Data, nil
}
