package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sgdl/go-sgdl-client/demandas"
)

func newDemandasCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demandas",
		Short: "Work with demandas",
	}
	cmd.AddCommand(
		newDemandasListCommand(a),
		newDemandasShowCommand(a),
		newDemandasCreateCommand(a),
		newDemandasEnviarCommand(a),
		newDemandasDespacharCommand(a),
		newDemandasStatusCommand(a),
		newDemandasAnexoCommand(a),
	)
	return cmd
}

func newDemandasListCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List demandas visible to the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := demandas.ListFilter{Status: demandas.Status(status)}
			list, err := a.demandas.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROTOCOLO\tSTATUS\tTITULO")
			for _, d := range list {
				protocolo := d.ProtocoloExecutivo
				if protocolo == "" {
					protocolo = d.ProtocoloLegislativo
				}
				if protocolo == "" {
					protocolo = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", d.ID, protocolo, d.Status, d.Titulo)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (e.g. EM_EXECUCAO)")
	return cmd
}

func newDemandasShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one demanda with its tramitações",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.demandas.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("[%d] %s\n", d.ID, d.Titulo)
			fmt.Printf("  status: %s\n", d.Status)
			if d.SecretariaDestino != nil {
				fmt.Printf("  secretaria: %s\n", d.SecretariaDestino.Nome)
			}
			fmt.Printf("  %s\n", d.Descricao)
			for _, t := range d.Tramitacoes {
				fmt.Printf("  %s  %-16s %s\n", t.Timestamp.Format("2006-01-02 15:04"), t.Tipo, t.Descricao)
			}
			return nil
		},
	}
}

func newDemandasCreateCommand(a *app) *cobra.Command {
	var input demandas.DemandaInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft demanda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.demandas.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Printf("Created demanda %d (%s)\n", d.ID, d.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Titulo, "titulo", "", "title")
	cmd.Flags().StringVar(&input.Descricao, "descricao", "", "description")
	cmd.Flags().Int64Var(&input.ServicoID, "servico", 0, "service ID from the carta de serviços")
	cmd.Flags().StringVar(&input.Logradouro, "logradouro", "", "street")
	cmd.Flags().StringVar(&input.Numero, "numero", "", "street number")
	cmd.Flags().StringVar(&input.Bairro, "bairro", "", "neighbourhood")
	cmd.Flags().StringVar(&input.CEP, "cep", "", "postal code")
	_ = cmd.MarkFlagRequired("titulo")
	_ = cmd.MarkFlagRequired("descricao")
	_ = cmd.MarkFlagRequired("servico")
	return cmd
}

func newDemandasEnviarCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enviar <id>",
		Short: "Submit a draft to the protocol office",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.demandas.Enviar(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("Demanda %d is now %s\n", d.ID, d.Status)
			return nil
		},
	}
}

func newDemandasDespacharCommand(a *app) *cobra.Command {
	var secretariaID int64

	cmd := &cobra.Command{
		Use:   "despachar <id>",
		Short: "Route a demanda to a secretaria (protocol office only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.demandas.Despachar(cmd.Context(), id, secretariaID)
			if err != nil {
				return err
			}
			fmt.Printf("Demanda %d dispatched, protocolo executivo %s\n", d.ID, d.ProtocoloExecutivo)
			return nil
		},
	}
	cmd.Flags().Int64Var(&secretariaID, "secretaria", 0, "destination secretaria ID")
	_ = cmd.MarkFlagRequired("secretaria")
	return cmd
}

func newDemandasStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <novo-status>",
		Short: "Update a demanda's execution status (EM_EXECUCAO or FINALIZADO)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.demandas.AtualizarStatus(cmd.Context(), id, demandas.Status(args[1]))
			if err != nil {
				return err
			}
			fmt.Printf("Demanda %d is now %s\n", d.ID, d.Status)
			return nil
		},
	}
}

func newDemandasAnexoCommand(a *app) *cobra.Command {
	var descricao string

	cmd := &cobra.Command{
		Use:   "anexo <id> <file>",
		Short: "Attach a file to a demanda",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[1])
			if err != nil {
				return errors.Wrap(err, "[demandas anexo] os.ReadFile")
			}
			anexo, err := a.demandas.CreateAnexo(cmd.Context(), id, descricao, filepath.Base(args[1]), content)
			if err != nil {
				return err
			}
			fmt.Printf("Anexo %d uploaded\n", anexo.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&descricao, "descricao", "", "attachment description")
	return cmd
}

func newSecretariasCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "secretarias",
		Short: "List the municipal departments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.demandas.Secretarias(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range list {
				fmt.Printf("%d\t%s\n", s.ID, s.Nome)
			}
			return nil
		},
	}
}

func newServicosCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "servicos",
		Short: "List the carta de serviços",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.demandas.Servicos(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIPO\tSECRETARIA\tNOME")
			for _, s := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Tipo, s.Secretaria.Nome, s.Nome)
			}
			return w.Flush()
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", raw)
	}
	return id, nil
}
