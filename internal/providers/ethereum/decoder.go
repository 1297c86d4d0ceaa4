package ethereum

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
)

// Argument names accepted for each event field, first match wins
var (
	batchIDArgs      = []string{"batchId", "batchID", "id"}
	contentRefArgs   = []string{"ipfsCid", "contentRef", "cid", "uri"}
	manufacturerArgs = []string{"manufacturer", "owner", "registrant"}
	fromArgs         = []string{"from", "fromAddr"}
	toArgs           = []string{"to", "toAddr"}
	readingHashArgs  = []string{"readingHash", "hash"}
	signerArgs       = []string{"signer", "device"}
	timeArgs         = []string{"time", "timestamp"}
)

var errArgMissing = errors.New("argument missing")

// decoder turns registry logs into ledger events using the contract ABI
type decoder struct {
	contract *abi.ABI
	byTopic  map[common.Hash]abi.Event
}

func newDecoder(contract *abi.ABI) (*decoder, error) {
	d := &decoder{
		contract: contract,
		byTopic:  make(map[common.Hash]abi.Event, len(domain.EventKinds)),
	}
	for _, kind := range domain.EventKinds {
		event, ok := contract.Events[string(kind)]
		if !ok {
			return nil, fmt.Errorf("contract abi does not declare event %s", kind)
		}
		d.byTopic[event.ID] = event
	}
	return d, nil
}

// topics returns the event signatures to filter on
func (d *decoder) topics() []common.Hash {
	topics := make([]common.Hash, 0, len(d.byTopic))
	for _, kind := range domain.EventKinds {
		topics = append(topics, d.contract.Events[string(kind)].ID)
	}
	return topics
}

// decode parses vLog. hasTime is false when the event carries no time argument
// and the caller must fall back to the block timestamp.
func (d *decoder) decode(vLog types.Log) (event domain.LedgerEvent, hasTime bool, err error) {
	if len(vLog.Topics) == 0 {
		return event, false, errors.New("log has no topics")
	}
	abiEvent, ok := d.byTopic[vLog.Topics[0]]
	if !ok {
		return event, false, fmt.Errorf("unknown event signature %s", vLog.Topics[0].Hex())
	}

	args := make(map[string]interface{}, len(abiEvent.Inputs))

	var indexed abi.Arguments
	for _, input := range abiEvent.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(indexed) != len(vLog.Topics)-1 {
		return event, false, fmt.Errorf("%s: expected %d indexed topics, got %d", abiEvent.Name, len(indexed), len(vLog.Topics)-1)
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, vLog.Topics[1:]); err != nil {
		return event, false, fmt.Errorf("%s: failed to parse topics: %w", abiEvent.Name, err)
	}
	if len(abiEvent.Inputs.NonIndexed()) > 0 {
		if err := d.contract.UnpackIntoMap(args, abiEvent.Name, vLog.Data); err != nil {
			return event, false, fmt.Errorf("%s: failed to unpack data: %w", abiEvent.Name, err)
		}
	}

	ts, err := intArg(args, timeArgs)
	hasTime = err == nil
	if err != nil && !errors.Is(err, errArgMissing) {
		return event, false, fmt.Errorf("%s: %w", abiEvent.Name, err)
	}

	batchID, err := stringArg(args, batchIDArgs)
	if err != nil {
		return event, false, fmt.Errorf("%s: batch id: %w", abiEvent.Name, err)
	}
	batchID = domain.NormalizeHex(batchID)

	switch domain.EventKind(abiEvent.Name) {
	case domain.EventKindBatchRegistered:
		contentRef, _ := stringArg(args, contentRefArgs)
		manufacturer, _ := stringArg(args, manufacturerArgs)
		event = domain.NewBatchRegisteredEvent(domain.BatchRegistered{
			BatchID:      batchID,
			ContentRef:   contentRef,
			Manufacturer: manufacturer,
			Time:         ts,
		})

	case domain.EventKindCustodyTransferred:
		from, err := stringArg(args, fromArgs)
		if err != nil {
			return event, false, fmt.Errorf("%s: from: %w", abiEvent.Name, err)
		}
		to, err := stringArg(args, toArgs)
		if err != nil {
			return event, false, fmt.Errorf("%s: to: %w", abiEvent.Name, err)
		}
		event = domain.NewCustodyTransferredEvent(domain.CustodyTransferred{
			BatchID:  batchID,
			FromAddr: from,
			ToAddr:   to,
			Time:     ts,
		})

	case domain.EventKindSensorAnchored:
		readingHash, err := stringArg(args, readingHashArgs)
		if err != nil {
			return event, false, fmt.Errorf("%s: reading hash: %w", abiEvent.Name, err)
		}
		signer, _ := stringArg(args, signerArgs)
		event = domain.NewSensorAnchoredEvent(domain.SensorAnchored{
			BatchID:     batchID,
			ReadingHash: domain.NormalizeHex(readingHash),
			Signer:      signer,
			Time:        ts,
		})

	default:
		return event, false, fmt.Errorf("%w: %q", domain.ErrUnknownEventKind, abiEvent.Name)
	}

	return event.WithLog(vLog.BlockNumber, vLog.TxHash.Hex(), vLog.Index), hasTime, nil
}

// setTime fills the time of whichever variant the event carries
func setTime(event *domain.LedgerEvent, ts int64) {
	switch {
	case event.BatchRegistered != nil:
		event.BatchRegistered.Time = ts
	case event.CustodyTransferred != nil:
		event.CustodyTransferred.Time = ts
	case event.SensorAnchored != nil:
		event.SensorAnchored.Time = ts
	}
}

func lookupArg(args map[string]interface{}, names []string) (interface{}, bool) {
	for _, name := range names {
		if v, ok := args[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// stringArg renders a decoded argument as text. bytes32 become lower-case 0x hex,
// integers become decimal and addresses keep their checksum form.
func stringArg(args map[string]interface{}, names []string) (string, error) {
	value, ok := lookupArg(args, names)
	if !ok {
		return "", errArgMissing
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case [32]byte:
		return hexutil.Encode(v[:]), nil
	case common.Hash:
		return hexutil.Encode(v[:]), nil
	case common.Address:
		return v.Hex(), nil
	case []byte:
		return hexutil.Encode(v), nil
	case *big.Int:
		return v.String(), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// intArg reads an integer argument as int64
func intArg(args map[string]interface{}, names []string) (int64, error) {
	value, ok := lookupArg(args, names)
	if !ok {
		return 0, errArgMissing
	}

	switch v := value.(type) {
	case *big.Int:
		if !v.IsInt64() {
			return 0, fmt.Errorf("time %s overflows int64", v.String())
		}
		return v.Int64(), nil
	case uint64:
		if v > uint64(1<<63-1) {
			return 0, fmt.Errorf("time %d overflows int64", v)
		}
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unexpected time type %T", value)
	}
}
