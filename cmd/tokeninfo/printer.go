package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"solana-token-info/internal/domain"
)

type printer struct {
	w     io.Writer
	start time.Time
}

type jsonReport struct {
	Tokens    []domain.TokenInfo `json:"tokens"`
	ElapsedMS int64              `json:"elapsed_ms"`
}

func (p printer) printJSON(results []domain.TokenInfo, elapsed time.Duration) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{Tokens: results, ElapsedMS: elapsed.Milliseconds()})
}

func (p printer) printText(results []domain.TokenInfo, elapsed time.Duration) {
	for i := range results {
		p.printToken(&results[i])
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "Total elapsed time: %s\n", elapsed.Round(time.Millisecond))
}

func (p printer) printToken(t *domain.TokenInfo) {
	fmt.Fprintf(p.w, "Token %s (%s)\n", t.Mint, t.Outcome)

	if m := t.MintAccount; m != nil {
		fmt.Fprintf(p.w, "  supply:           %s (raw %d, decimals %d)\n", m.UISupply(), m.Supply, m.Decimals)
		fmt.Fprintf(p.w, "  mint authority:   %s\n", optionalKey(m.MintAuthority))
		fmt.Fprintf(p.w, "  freeze authority: %s\n", optionalKey(m.FreezeAuthority))
	}
	if t.MetadataAddress != nil {
		fmt.Fprintf(p.w, "  metadata account: %s\n", t.MetadataAddress)
	}
	if md := t.Metadata; md != nil {
		fmt.Fprintf(p.w, "  name:             %s\n", md.Name)
		fmt.Fprintf(p.w, "  symbol:           %s\n", md.Symbol)
		fmt.Fprintf(p.w, "  uri:              %s\n", md.URI)
		fmt.Fprintf(p.w, "  update authority: %s\n", md.UpdateAuthority)
	}
	if doc := t.Offchain; doc != nil {
		printField(p.w, "description", doc.Description)
		printField(p.w, "image", doc.Image)
		printField(p.w, "external url", doc.ExternalURL)
		printField(p.w, "website", doc.Website)
		if doc.WebsiteDNSRecords != nil {
			fmt.Fprintf(p.w, "  website dns:      %d records\n", *doc.WebsiteDNSRecords)
		}
	}
	for _, is := range t.Issues {
		fmt.Fprintf(p.w, "  ! %s: %s: %s\n", is.Stage, is.Reason, is.Message)
	}
	if t.FetchedAt > 0 {
		taken := time.UnixMilli(t.FetchedAt).Sub(p.start)
		if taken < 0 {
			taken = 0
		}
		fmt.Fprintf(p.w, "  time taken:       %s\n", taken.Round(time.Millisecond))
	}
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-17s %s\n", label+":", value)
}

func optionalKey(k domain.OptionalKey) string {
	if pk, ok := k.Get(); ok {
		return pk.String()
	}
	return "none"
}
