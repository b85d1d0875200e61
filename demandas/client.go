package demandas

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sgdl/go-sgdl-client/gateway"
	"github.com/sgdl/go-sgdl-client/users"
)

// Client is the demandas API collaborator.
type Client struct {
	gw *gateway.Client
}

// NewClient creates a demandas client over a gateway.
func NewClient(gw *gateway.Client) (*Client, error) {
	if gw == nil {
		return nil, errors.New("[demandas.NewClient] gateway is required")
	}
	return &Client{gw: gw}, nil
}

// dateLayout is how the backend expects date bounds on the wire.
const dateLayout = "2006-01-02"

// ListFilter narrows a demanda listing. Zero values mean "no filter". Period
// filters live on ReportFilter: the listing endpoint has no date fields.
type ListFilter struct {
	Status        Status
	StatusIn      []Status
	StatusExclude Status
	AutorID       int64
	SecretariaID  int64
}

func (f ListFilter) query() url.Values {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if len(f.StatusIn) > 0 {
		values := make([]string, 0, len(f.StatusIn))
		for _, s := range f.StatusIn {
			values = append(values, string(s))
		}
		query.Set("status__in", strings.Join(values, ","))
	}
	if f.StatusExclude != "" {
		query.Set("status__exclude", string(f.StatusExclude))
	}
	if f.AutorID != 0 {
		query.Set("autor", fmt.Sprintf("%d", f.AutorID))
	}
	if f.SecretariaID != 0 {
		query.Set("secretaria_destino", fmt.Sprintf("%d", f.SecretariaID))
	}
	return query
}

// LocationFilter narrows the geocoded points of the map views.
type LocationFilter struct {
	Status      Status
	TipoServico TipoServico
	ServicoID   int64
	DataInicio  time.Time
	DataFim     time.Time
}

func (f LocationFilter) query() url.Values {
	query := url.Values{}
	if f.Status != "" {
		query.Set("status", string(f.Status))
	}
	if f.TipoServico != "" {
		query.Set("tipo_servico", string(f.TipoServico))
	}
	if f.ServicoID != 0 {
		query.Set("servico_id", fmt.Sprintf("%d", f.ServicoID))
	}
	if !f.DataInicio.IsZero() {
		query.Set("data_inicio", f.DataInicio.Format(dateLayout))
	}
	if !f.DataFim.IsZero() {
		query.Set("data_fim", f.DataFim.Format(dateLayout))
	}
	return query
}

// ReportFilter narrows the report queries. The multi-valued fields encode as
// repeated query parameters, which is how the report endpoints read them.
type ReportFilter struct {
	DataInicio   time.Time
	DataFim      time.Time
	StatusIn     []Status
	SecretariaIn []int64
	ServicoIn    []int64
	VereadorIn   []int64
}

func (f ReportFilter) query() url.Values {
	query := url.Values{}
	if !f.DataInicio.IsZero() {
		query.Set("data_inicio", f.DataInicio.Format(dateLayout))
	}
	if !f.DataFim.IsZero() {
		query.Set("data_fim", f.DataFim.Format(dateLayout))
	}
	for _, s := range f.StatusIn {
		query.Add("status__in", string(s))
	}
	for _, id := range f.SecretariaIn {
		query.Add("secretaria__in", fmt.Sprintf("%d", id))
	}
	for _, id := range f.ServicoIn {
		query.Add("servico__in", fmt.Sprintf("%d", id))
	}
	for _, id := range f.VereadorIn {
		query.Add("vereador__in", fmt.Sprintf("%d", id))
	}
	return query
}

// List returns demandas matching the filter. The backend already scopes the
// result to the caller's perfil (a vereador sees their own, a secretaria
// sees its queue).
func (c *Client) List(ctx context.Context, filter ListFilter) ([]Demanda, error) {
	var result []Demanda
	if err := c.gw.Get(ctx, "demandas/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.List]")
	}
	return result, nil
}

// Get returns one demanda with its tramitações and anexos.
func (c *Client) Get(ctx context.Context, id int64) (*Demanda, error) {
	var result Demanda
	if err := c.gw.Get(ctx, fmt.Sprintf("demandas/%d/", id), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Get]")
	}
	return &result, nil
}

// Create registers a new demanda as a draft.
func (c *Client) Create(ctx context.Context, input DemandaInput) (*Demanda, error) {
	var result Demanda
	if err := c.gw.Post(ctx, "demandas/", input, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Create]")
	}
	return &result, nil
}

// Update replaces a demanda.
func (c *Client) Update(ctx context.Context, id int64, input DemandaInput) (*Demanda, error) {
	var result Demanda
	if err := c.gw.Put(ctx, fmt.Sprintf("demandas/%d/", id), input, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Update]")
	}
	return &result, nil
}

// Delete removes a demanda (drafts only, enforced by the backend).
func (c *Client) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(c.gw.Delete(ctx, fmt.Sprintf("demandas/%d/", id)), "[Client.Delete]")
}

// Enviar submits a draft to the protocol office.
func (c *Client) Enviar(ctx context.Context, id int64) (*Demanda, error) {
	var result Demanda
	if err := c.gw.Post(ctx, fmt.Sprintf("demandas/%d/enviar/", id), nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Enviar]")
	}
	return &result, nil
}

type despacharRequest struct {
	SecretariaID int64 `json:"secretaria_id"`
}

// Despachar routes a protocoled demanda to a secretaria. Protocol-office
// action; other perfis get a 403 surfaced unchanged.
func (c *Client) Despachar(ctx context.Context, id, secretariaID int64) (*Demanda, error) {
	var result Demanda
	err := c.gw.Post(ctx, fmt.Sprintf("demandas/%d/despachar/", id), despacharRequest{SecretariaID: secretariaID}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Despachar]")
	}
	return &result, nil
}

// SolicitarTransferencia asks the protocol office to move the demanda to
// another secretaria. Only the current secretaria de destino may call it; the
// demanda goes to AGUARDANDO_TRANSFERENCIA and a TRANSFERENCIA tramitação is
// recorded server-side.
func (c *Client) SolicitarTransferencia(ctx context.Context, id int64) error {
	err := c.gw.Post(ctx, fmt.Sprintf("demandas/%d/solicitar_transferencia/", id), nil, nil)
	return errors.Wrap(err, "[Client.SolicitarTransferencia]")
}

type aprovarTransferenciaRequest struct {
	NovaSecretariaID int64 `json:"nova_secretaria_id"`
}

// AprovarTransferencia approves a pending transfer, moving the demanda to
// the given secretaria and back to PROTOCOLADO. Protocol-office action.
func (c *Client) AprovarTransferencia(ctx context.Context, id, novaSecretariaID int64) error {
	body := aprovarTransferenciaRequest{NovaSecretariaID: novaSecretariaID}
	err := c.gw.Post(ctx, fmt.Sprintf("demandas/%d/aprovar_transferencia/", id), body, nil)
	return errors.Wrap(err, "[Client.AprovarTransferencia]")
}

type atualizarStatusRequest struct {
	Status Status `json:"status"`
}

// AtualizarStatus moves a demanda the secretaria is working on to
// EM_EXECUCAO or FINALIZADO. Other statuses are rejected by the backend.
func (c *Client) AtualizarStatus(ctx context.Context, id int64, novo Status) (*Demanda, error) {
	var result Demanda
	err := c.gw.Post(ctx, fmt.Sprintf("demandas/%d/atualizar_status/", id), atualizarStatusRequest{Status: novo}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.AtualizarStatus]")
	}
	return &result, nil
}

// CreateTramitacao records a step in a demanda's history.
func (c *Client) CreateTramitacao(ctx context.Context, input TramitacaoInput) (*Tramitacao, error) {
	var result Tramitacao
	if err := c.gw.Post(ctx, "tramitacoes/", input, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateTramitacao]")
	}
	return &result, nil
}

// CreateAnexo uploads a file attachment for a demanda.
func (c *Client) CreateAnexo(ctx context.Context, demandaID int64, descricao, filename string, content []byte) (*Anexo, error) {
	form := gateway.NewMultipart().
		Field("demanda", fmt.Sprintf("%d", demandaID)).
		Field("descricao", descricao).
		File("arquivo", filename, content)

	var result Anexo
	if err := c.gw.PostMultipart(ctx, "anexos/", form, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.CreateAnexo]")
	}
	return &result, nil
}

// DeleteAnexo removes an attachment.
func (c *Client) DeleteAnexo(ctx context.Context, id int64) error {
	return errors.Wrap(c.gw.Delete(ctx, fmt.Sprintf("anexos/%d/", id)), "[Client.DeleteAnexo]")
}

// Secretarias lists the municipal departments.
func (c *Client) Secretarias(ctx context.Context) ([]users.Secretaria, error) {
	var result []users.Secretaria
	if err := c.gw.Get(ctx, "secretarias/", nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Secretarias]")
	}
	return result, nil
}

// Servicos lists the carta de serviços.
func (c *Client) Servicos(ctx context.Context) ([]Servico, error) {
	var result []Servico
	if err := c.gw.Get(ctx, "servicos/", nil, &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Servicos]")
	}
	return result, nil
}

// DashboardStats returns the dashboard aggregates, optionally filtered.
func (c *Client) DashboardStats(ctx context.Context, filter ListFilter) (*DashboardStats, error) {
	var result DashboardStats
	if err := c.gw.Get(ctx, "dashboard/stats/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.DashboardStats]")
	}
	return &result, nil
}

// Locations returns geocoded demanda points for the map views. The backend
// scopes the result to the caller's perfil.
func (c *Client) Locations(ctx context.Context, filter LocationFilter) ([]Location, error) {
	var result []Location
	if err := c.gw.Get(ctx, "demandas/locations/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Locations]")
	}
	return result, nil
}

// ReportDemandas lists demandas for the reports page. Unlike List, this
// endpoint accepts period bounds and multi-valued filters.
func (c *Client) ReportDemandas(ctx context.Context, filter ReportFilter) ([]Demanda, error) {
	var result []Demanda
	if err := c.gw.Get(ctx, "reports/demandas-filtradas/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ReportDemandas]")
	}
	return result, nil
}

// ReportPorStatus returns demanda counts grouped by status.
func (c *Client) ReportPorStatus(ctx context.Context, filter ReportFilter) ([]StatusAggregate, error) {
	var result []StatusAggregate
	if err := c.gw.Get(ctx, "reports/por-status/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ReportPorStatus]")
	}
	return result, nil
}

// ReportPorSecretaria returns demanda counts grouped by secretaria.
func (c *Client) ReportPorSecretaria(ctx context.Context, filter ReportFilter) ([]ReportSecretaria, error) {
	var result []ReportSecretaria
	if err := c.gw.Get(ctx, "reports/por-secretaria/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ReportPorSecretaria]")
	}
	return result, nil
}

// ReportPorVereador returns demanda counts grouped by author.
func (c *Client) ReportPorVereador(ctx context.Context, filter ReportFilter) ([]ReportVereador, error) {
	var result []ReportVereador
	if err := c.gw.Get(ctx, "reports/por-vereador/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.ReportPorVereador]")
	}
	return result, nil
}

// Heatmap returns the coordinates of the filtered demandas.
func (c *Client) Heatmap(ctx context.Context, filter ReportFilter) ([]HeatPoint, error) {
	var result []HeatPoint
	if err := c.gw.Get(ctx, "reports/heatmap/", filter.query(), &result); err != nil {
		return nil, errors.Wrap(err, "[Client.Heatmap]")
	}
	return result, nil
}
