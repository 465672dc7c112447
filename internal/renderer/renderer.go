// Package renderer wraps the generative image and video endpoints. Images
// come back synchronously as base64 payloads; video is a long-running
// operation polled until completion.
package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"brandforge/internal/config"
	"brandforge/internal/models"
	"brandforge/internal/provider"

	"go.uber.org/zap"
)

const stageName = "visual_rendering"

// Fixed quality boilerplate appended to every prompt before dispatch.
const promptSuffix = ", photorealistic, 8k, highly detailed, commercial photography"

type Client struct {
	cfg    config.RendererConfig
	apiKey string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg config.RendererConfig, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		apiKey: apiKey,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("renderer"),
	}
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
}

type imagePrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// RenderImage generates one image for the prompt. Failures are returned
// as errors; the orchestrator turns them into an unavailable slot rather
// than propagating them.
func (c *Client) RenderImage(ctx context.Context, prompt string, aspect models.AspectRatio) (*models.RenderedVisual, error) {
	body := predictRequest{
		Instances:  []predictInstance{{Prompt: prompt + promptSuffix}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: string(aspect)},
	}

	endpoint := fmt.Sprintf("%s/models/%s:predict?key=%s", c.cfg.BaseURL, c.cfg.ImageModel, c.apiKey)
	var resp predictResponse
	if err := c.postJSON(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Predictions) == 0 {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("response contained no predictions"))
	}

	// The payload is usually an object carrying bytesBase64Encoded, but
	// some model versions return the bare base64 string.
	raw := resp.Predictions[0]
	var pred imagePrediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		if err := json.Unmarshal(raw, &pred.BytesBase64Encoded); err != nil {
			return nil, provider.NewStageError(stageName, provider.MalformedResponse,
				fmt.Errorf("unrecognized prediction payload: %w", err))
		}
	}
	if pred.BytesBase64Encoded == "" {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("prediction carried no image payload"))
	}

	data, err := base64.StdEncoding.DecodeString(pred.BytesBase64Encoded)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("failed to decode image payload: %w", err))
	}

	mime := pred.MimeType
	if mime == "" {
		mime = "image/png"
	}
	c.logger.Info("image rendered", zap.String("aspect", string(aspect)), zap.Int("bytes", len(data)))
	return &models.RenderedVisual{Data: data, MIME: mime}, nil
}

type operationResponse struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Response struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RenderVideo starts a long-running generation and polls the operation at
// a fixed interval until completion or the configured deadline, then
// downloads the generated bytes.
func (c *Client) RenderVideo(ctx context.Context, prompt string, aspect models.AspectRatio) (*models.RenderedVisual, error) {
	body := predictRequest{
		Instances:  []predictInstance{{Prompt: prompt + promptSuffix}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: string(aspect)},
	}

	endpoint := fmt.Sprintf("%s/models/%s:predictLongRunning?key=%s", c.cfg.BaseURL, c.cfg.VideoModel, c.apiKey)
	var op operationResponse
	if err := c.postJSON(ctx, endpoint, body, &op); err != nil {
		return nil, err
	}
	if op.Name == "" {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("operation response carried no name"))
	}

	deadline := time.Now().Add(c.cfg.PollDeadline)
	for !op.Done {
		if time.Now().After(deadline) {
			return nil, provider.NewStageError(stageName, provider.Timeout,
				fmt.Errorf("video operation %s did not complete within %s", op.Name, c.cfg.PollDeadline))
		}
		select {
		case <-ctx.Done():
			return nil, provider.NewStageError(stageName, provider.Timeout, ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}

		pollURL := fmt.Sprintf("%s/%s?key=%s", c.cfg.BaseURL, op.Name, c.apiKey)
		if err := c.getJSON(ctx, pollURL, &op); err != nil {
			return nil, err
		}
		c.logger.Debug("polled video operation", zap.String("operation", op.Name), zap.Bool("done", op.Done))
	}

	if op.Error != nil {
		return nil, provider.NewStageError(stageName, provider.UpstreamError,
			fmt.Errorf("video generation failed: %s", op.Error.Message))
	}
	samples := op.Response.GenerateVideoResponse.GeneratedSamples
	if len(samples) == 0 || samples[0].Video.URI == "" {
		return nil, provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("completed operation carried no video"))
	}

	data, err := c.download(ctx, samples[0].Video.URI)
	if err != nil {
		return nil, err
	}
	c.logger.Info("video rendered", zap.Int("bytes", len(data)))
	return &models.RenderedVisual{Data: data, MIME: "video/mp4"}, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.NewStageError(stageName, provider.MalformedResponse, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return provider.NewStageError(stageName, provider.UpstreamError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return provider.NewStageError(stageName, provider.UpstreamError, err)
	}
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		kind := provider.UpstreamError
		if isTimeout(err) {
			kind = provider.Timeout
		}
		return provider.NewStageError(stageName, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("generation endpoint returned non-success status",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return provider.NewStageError(stageName, provider.UpstreamError,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.NewStageError(stageName, provider.MalformedResponse,
			fmt.Errorf("failed to decode generation response: %w", err))
	}
	return nil
}

func (c *Client) download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.UpstreamError, err)
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.UpstreamError, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, provider.NewStageError(stageName, provider.UpstreamError,
			fmt.Errorf("video download returned status %d", resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, provider.NewStageError(stageName, provider.UpstreamError, err)
	}
	return data, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}
