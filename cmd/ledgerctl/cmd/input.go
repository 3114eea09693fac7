package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Personal-Finance-Ledger-Backend/internal/api/request"
)

// readBatch loads a transaction batch from path, or from stdin when path is "-".
// YAML files (.yaml, .yml) are converted to JSON first so both formats share one decoder
// and the same amount rules.
func readBatch(cmd *cobra.Command, path string) (request.TransactionBatch, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return request.TransactionBatch{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return request.TransactionBatch{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	return request.NewTransactionBatch(data)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = []interface{}{}
	}
	return json.Marshal(doc)
}

// writeJSON prints v as indented JSON on the command's output.
func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
