package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

const defaultViaCEPBaseURL = "https://viacep.com.br"

// CEPLookup prefills the address form from a postal code. Every failure mode
// degrades to nil ("no data") — the shopper can always type the address in.
type CEPLookup interface {
	Lookup(ctx context.Context, cep string) *domain.Address
}

type viaCEPResponse struct {
	CEP        string `json:"cep"`
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// ViaCEPClient queries the public ViaCEP API behind a circuit breaker so a
// flapping upstream stops costing a round trip per keystroke.
type ViaCEPClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Address]
}

func NewViaCEPClient(baseURL string) *ViaCEPClient {
	if baseURL == "" {
		baseURL = defaultViaCEPBaseURL
	}
	settings := gobreaker.Settings{
		Name:    "viacep",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &ViaCEPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*domain.Address](settings),
	}
}

// Lookup returns the address registered for the CEP, or nil when the CEP is
// malformed, unknown, or the upstream is unavailable.
func (c *ViaCEPClient) Lookup(ctx context.Context, cep string) *domain.Address {
	digits, ok := NormalizeCEP(cep)
	if !ok {
		return nil
	}

	addr, err := c.breaker.Execute(func() (*domain.Address, error) {
		return c.fetch(ctx, digits)
	})
	if err != nil {
		log.WithError(err).WithField("cep", digits).Warn("cep lookup unavailable")
		return nil
	}
	return addr
}

func (c *ViaCEPClient) fetch(ctx context.Context, cep string) (*domain.Address, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", c.baseURL, cep)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build cep request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cep request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cep lookup returned status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode cep response: %w", err)
	}
	if body.Erro {
		// unknown CEP is not an upstream failure, just no data
		return nil, nil
	}

	return &domain.Address{
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
		CEP:          cep,
	}, nil
}
