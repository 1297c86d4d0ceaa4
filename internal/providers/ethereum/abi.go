package ethereum

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/adapter"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
)

// contractArtifact is the subset of a hardhat build artifact we read
type contractArtifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// LoadContractABI reads the registry ABI from a hardhat artifact or a bare ABI array
// and checks that every consumed event is declared.
func LoadContractABI(fs adapter.FileSystem, jsonAdapter adapter.JSON, path string) (*abi.ABI, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contract artifact: %w", err)
	}

	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil, fmt.Errorf("contract artifact %s is empty", path)
	}
	if raw[0] != '[' {
		var artifact contractArtifact
		if err := jsonAdapter.Unmarshal(raw, &artifact); err != nil {
			return nil, fmt.Errorf("failed to parse contract artifact: %w", err)
		}
		if len(artifact.ABI) == 0 {
			return nil, fmt.Errorf("contract artifact %s has no abi field", path)
		}
		raw = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract abi: %w", err)
	}

	for _, kind := range domain.EventKinds {
		if _, ok := parsed.Events[string(kind)]; !ok {
			return nil, fmt.Errorf("contract abi does not declare event %s", kind)
		}
	}

	return &parsed, nil
}
