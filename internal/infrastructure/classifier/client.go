package classifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/smartdocs/internal/core/domain"
	"github.com/kirillkom/smartdocs/internal/infrastructure/resilience"
)

// maxContentBytes caps the payload sent to the classification service.
const maxContentBytes = 4 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	taxonomy   *Taxonomy
}

func New(baseURL string, executor *resilience.Executor, taxonomy *Taxonomy) *Client {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
		taxonomy:   taxonomy,
	}
}

type classifyRequest struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}

type classifyResponse struct {
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
	Summary    string   `json:"summary"`
}

func (c *Client) Classify(ctx context.Context, doc *domain.Document, content io.Reader) (domain.Classification, error) {
	raw, err := io.ReadAll(io.LimitReader(content, maxContentBytes))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("read document content: %w", err)
	}

	request := classifyRequest{
		Filename: doc.Filename,
		MimeType: doc.MimeType,
		Content:  base64.StdEncoding.EncodeToString(raw),
	}

	var response classifyResponse
	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/v1/classify", request, &response, "classify")
	}
	if c.executor != nil {
		err = c.executor.Execute(ctx, "classifier.classify", call, classifyClassifierError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Classification{}, wrapTemporaryIfNeeded("classifier.classify", err)
	}

	result := domain.Classification{
		Category:   c.taxonomy.Normalize(response.Category),
		Tags:       response.Tags,
		Confidence: response.Confidence,
		Summary:    strings.TrimSpace(response.Summary),
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}
	return result, nil
}
