// Package demandas is the typed client for the application's own API
// surface: the demandas lifecycle, routing between secretarias, tramitação
// history, anexos and the dashboard queries. Every call goes through the
// gateway, so token attachment and renewal apply transparently.
package demandas

import (
	"time"

	"github.com/sgdl/go-sgdl-client/users"
)

// Status of a demanda through its lifecycle.
type Status string

const (
	StatusRascunho                Status = "RASCUNHO"
	StatusAguardandoProtocolo     Status = "AGUARDANDO_PROTOCOLO"
	StatusProtocolado             Status = "PROTOCOLADO"
	StatusEmExecucao              Status = "EM_EXECUCAO"
	StatusAguardandoTransferencia Status = "AGUARDANDO_TRANSFERENCIA"
	StatusFinalizado              Status = "FINALIZADO"
	StatusCancelado               Status = "CANCELADO"
)

// TipoTramitacao classifies an entry in a demanda's history.
type TipoTramitacao string

const (
	TramitacaoEnvioOficial   TipoTramitacao = "ENVIO_OFICIAL"
	TramitacaoDespacho       TipoTramitacao = "DESPACHO"
	TramitacaoTransferencia  TipoTramitacao = "TRANSFERENCIA"
	TramitacaoStatusUpdate   TipoTramitacao = "STATUS_UPDATE"
	TramitacaoComentario     TipoTramitacao = "COMENTARIO"
	TramitacaoAnaliseTecnica TipoTramitacao = "ANALISE_TECNICA"
	TramitacaoAtraso         TipoTramitacao = "ATRASO"
	TramitacaoConclusao      TipoTramitacao = "CONCLUSAO"
)

// TipoServico classifies an entry of the carta de serviços.
type TipoServico string

const (
	ServicoEvento      TipoServico = "EVENTO"
	ServicoAtendimento TipoServico = "ATENDIMENTO"
	ServicoServico     TipoServico = "SERVIÇO"
	ServicoVistoria    TipoServico = "VISTORIA"
	ServicoImplantacao TipoServico = "IMPLANTAÇÃO"
)

// Servico is an entry of the municipal carta de serviços.
type Servico struct {
	ID         int64            `json:"id,omitempty"`
	Nome       string           `json:"nome,omitempty"`
	Tipo       TipoServico      `json:"tipo,omitempty"`
	Secretaria users.Secretaria `json:"secretaria_responsavel,omitempty"`
	PrazoDias  int              `json:"prazo_padrao_dias,omitempty"`
}

// Demanda is a citizen request / legislative matter.
type Demanda struct {
	ID                   int64             `json:"id,omitempty"`
	ProtocoloLegislativo string            `json:"protocolo_legislativo,omitempty"`
	ProtocoloExecutivo   string            `json:"protocolo_executivo,omitempty"`
	Titulo               string            `json:"titulo,omitempty"`
	Descricao            string            `json:"descricao,omitempty"`
	CEP                  string            `json:"cep,omitempty"`
	Logradouro           string            `json:"logradouro,omitempty"`
	Numero               string            `json:"numero,omitempty"`
	Complemento          string            `json:"complemento,omitempty"`
	Bairro               string            `json:"bairro,omitempty"`
	Latitude             float64           `json:"latitude,omitempty,string"`
	Longitude            float64           `json:"longitude,omitempty,string"`
	Status               Status            `json:"status,omitempty"`
	DataCriacao          time.Time         `json:"data_criacao,omitempty"`
	DataFinalizacao      *time.Time        `json:"data_finalizacao,omitempty"`
	Autor                *users.User       `json:"autor,omitempty"`
	Servico              *Servico          `json:"servico,omitempty"`
	SecretariaDestino    *users.Secretaria `json:"secretaria_destino,omitempty"`
	Tramitacoes          []Tramitacao      `json:"tramitacoes,omitempty"`
	Anexos               []Anexo           `json:"anexos,omitempty"`
}

// DemandaInput is the payload for creating or replacing a demanda. Service
// and destination are sent as IDs.
type DemandaInput struct {
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
	ServicoID   int64  `json:"servico_id"`
	CEP         string `json:"cep,omitempty"`
	Logradouro  string `json:"logradouro,omitempty"`
	Numero      string `json:"numero,omitempty"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro,omitempty"`
}

// Tramitacao is one step of a demanda's history.
type Tramitacao struct {
	ID        int64          `json:"id,omitempty"`
	DemandaID int64          `json:"demanda,omitempty"`
	Usuario   *users.User    `json:"usuario,omitempty"`
	Tipo      TipoTramitacao `json:"tipo,omitempty"`
	Descricao string         `json:"descricao,omitempty"`
	Timestamp time.Time      `json:"timestamp,omitempty"`
}

// TramitacaoInput is the payload for recording a tramitação.
type TramitacaoInput struct {
	DemandaID int64          `json:"demanda"`
	Tipo      TipoTramitacao `json:"tipo"`
	Descricao string         `json:"descricao"`
}

// Anexo is a file attached to a demanda.
type Anexo struct {
	ID         int64     `json:"id,omitempty"`
	DemandaID  int64     `json:"demanda,omitempty"`
	ArquivoURL string    `json:"arquivo,omitempty"`
	Descricao  string    `json:"descricao,omitempty"`
	DataUpload time.Time `json:"data_upload,omitempty"`
}

// Location is a geocoded demanda point for the map views.
type Location struct {
	ID        int64   `json:"id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Titulo    string  `json:"titulo,omitempty"`
	Protocolo string  `json:"protocolo,omitempty"`
	Status    Status  `json:"status,omitempty"`
	Atrasada  bool    `json:"is_atrasada,omitempty"`
}

// KPIs are the headline counters of the dashboard.
type KPIs struct {
	TotalDemandas      int `json:"total_demandas"`
	DemandasAbertas    int `json:"demandas_abertas"`
	DemandasConcluidas int `json:"demandas_concluidas"`
	DemandasAtrasadas  int `json:"demandas_atrasadas"`
}

// SecretariaAggregate is a per-secretaria count in the dashboard payload.
type SecretariaAggregate struct {
	Nome    string `json:"secretaria_destino__nome"`
	Total   int    `json:"total"`
	Abertas int    `json:"abertas"`
}

// VereadorAggregate is a per-vereador count in the dashboard payload.
type VereadorAggregate struct {
	FirstName string `json:"autor__first_name"`
	LastName  string `json:"autor__last_name"`
	Total     int    `json:"total"`
	Abertas   int    `json:"abertas"`
}

// StatusAggregate is a per-status count, as returned by the dashboard and by
// the por-status report.
type StatusAggregate struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// MonthlyAggregate is a per-month count; Mes comes back as "2006-01".
type MonthlyAggregate struct {
	Mes     string `json:"mes"`
	Total   int    `json:"total"`
	Abertas int    `json:"abertas"`
}

// DashboardStats is the aggregate view behind the dashboard.
type DashboardStats struct {
	KPIs          KPIs                  `json:"kpis"`
	PorSecretaria []SecretariaAggregate `json:"por_secretaria"`
	PorVereador   []VereadorAggregate   `json:"por_vereador"`
	PorStatus     []StatusAggregate     `json:"por_status_agrupado"`
	Mensal        []MonthlyAggregate    `json:"mensal"`
}

// ReportSecretaria is one row of the por-secretaria report.
type ReportSecretaria struct {
	Secretaria string `json:"secretaria"`
	Total      int    `json:"total"`
	Abertas    int    `json:"abertas"`
}

// ReportVereador is one row of the por-vereador report.
type ReportVereador struct {
	Vereador string `json:"vereador"`
	Total    int    `json:"total"`
}

// HeatPoint is one coordinate of the heat map report.
type HeatPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
