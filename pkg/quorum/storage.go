package quorum

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/sxt-network/sxt-node/pkg/store"
	"github.com/sxt-network/sxt-node/pkg/table"
)

var (
	subPrefix      = []byte("sub/")
	finalPrefix    = []byte("final/")
	blockNumPrefix = []byte("blocknum/")
)

func submissionKey(batchID string, scope Scope, account string) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%s", subPrefix, batchID, scope, account))
}

func submissionScanPrefix(batchID string, scope Scope) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/", subPrefix, batchID, scope))
}

func finalKey(batchID string) []byte {
	return append(append([]byte{}, finalPrefix...), []byte(batchID)...)
}

func blockNumKey(id table.ID) []byte {
	return append(append([]byte{}, blockNumPrefix...), []byte(id.String())...)
}

// isFinalized reports whether batchID already has a terminal DataQuorum
// record (spec §3 "Finalized batch record").
func isFinalized(s *store.Store, batchID string) (bool, error) {
	return s.Has(store.PrefixQuorum, finalKey(batchID))
}

// recordSubmission stores one (batch, scope, account) -> hash vote,
// enforcing MaxSubmittersPerScope unless account is overwriting its own
// existing vote.
func recordSubmission(s *store.Store, batchID string, scope Scope, account string, hash [32]byte) (votes map[string][32]byte, err error) {
	votes, err = scopeVotes(s, batchID, scope)
	if err != nil {
		return nil, err
	}
	if _, exists := votes[account]; !exists && len(votes) >= MaxSubmittersPerScope {
		return nil, ErrMaxSubmittersReached
	}
	votes[account] = hash
	if err := s.Set(store.PrefixQuorum, submissionKey(batchID, scope, account), hash[:]); err != nil {
		return nil, err
	}
	return votes, nil
}

// scopeVotes returns the current {account -> hash} map for (batchID, scope).
func scopeVotes(s *store.Store, batchID string, scope Scope) (map[string][32]byte, error) {
	prefix := submissionScanPrefix(batchID, scope)
	foliates, err := s.ScanPrefix(append(append([]byte{}, store.PrefixQuorum...), prefix...))
	if err != nil {
		return nil, err
	}
	out := make(map[string][32]byte, len(foliates))
	for _, f := range foliates {
		if len(f.Value) != 32 {
			continue
		}
		var h [32]byte
		copy(h[:], f.Value)
		out[string(f.Key)] = h
	}
	return out, nil
}

// clearBatchSubmissions removes every (batch, scope, account) entry across
// both scopes, bounded by MaxSubmittersPerScope per scope (spec §4.E
// finalization step 1).
func clearBatchSubmissions(s *store.Store, batchID string) error {
	for _, scope := range []Scope{ScopePublic, ScopePrivileged} {
		votes, err := scopeVotes(s, batchID, scope)
		if err != nil {
			return err
		}
		for account := range votes {
			if err := s.Delete(store.PrefixQuorum, submissionKey(batchID, scope, account)); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeDataQuorum/decodeDataQuorum persist a DataQuorum with a small
// length-prefixed binary layout; there is no schema-registration or
// protobuf dependency in the corpus worth pulling in for one small,
// internal finality record.
func encodeDataQuorum(q DataQuorum) []byte {
	buf := make([]byte, 0, 96)
	buf = appendString(buf, q.BatchID)
	buf = appendString(buf, q.Table.Namespace)
	buf = appendString(buf, q.Table.Name)
	buf = append(buf, q.DataHash[:]...)
	buf = append(buf, byte(q.Scope))
	if q.BlockNumber != nil {
		buf = append(buf, 1)
		buf = binary.BigEndian.AppendUint64(buf, *q.BlockNumber)
	} else {
		buf = append(buf, 0)
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(q.Agreements))
	buf = binary.BigEndian.AppendUint32(buf, uint32(q.Dissents))
	return buf
}

func decodeDataQuorum(data []byte) (DataQuorum, error) {
	r := &reader{buf: data}
	batchID, err := r.string()
	if err != nil {
		return DataQuorum{}, err
	}
	ns, err := r.string()
	if err != nil {
		return DataQuorum{}, err
	}
	name, err := r.string()
	if err != nil {
		return DataQuorum{}, err
	}
	hash, err := r.fixed(32)
	if err != nil {
		return DataQuorum{}, err
	}
	scopeByte, err := r.byte()
	if err != nil {
		return DataQuorum{}, err
	}
	hasBlock, err := r.byte()
	if err != nil {
		return DataQuorum{}, err
	}
	var blockNumber *uint64
	if hasBlock == 1 {
		bn, err := r.uint64()
		if err != nil {
			return DataQuorum{}, err
		}
		blockNumber = &bn
	}
	agreements, err := r.uint32()
	if err != nil {
		return DataQuorum{}, err
	}
	dissents, err := r.uint32()
	if err != nil {
		return DataQuorum{}, err
	}
	var dataHash [32]byte
	copy(dataHash[:], hash)
	return DataQuorum{
		BatchID:     batchID,
		Table:       table.ID{Namespace: ns, Name: name},
		DataHash:    dataHash,
		Scope:       Scope(scopeByte),
		BlockNumber: blockNumber,
		Agreements:  int(agreements),
		Dissents:    int(dissents),
	}, nil
}

func persistFinal(s *store.Store, q DataQuorum) error {
	return s.Set(store.PrefixQuorum, finalKey(q.BatchID), encodeDataQuorum(q))
}

// persistHighestBlockNumber keeps the maximum block number ever observed
// for a table (spec §4.E finalization step 5).
func persistHighestBlockNumber(s *store.Store, id table.ID, blockNumber uint64) error {
	existing, err := s.Get(store.PrefixQuorum, blockNumKey(id))
	if err != nil {
		return err
	}
	if existing != nil && binary.BigEndian.Uint64(existing) >= blockNumber {
		return nil
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, blockNumber)
	return s.Set(store.PrefixQuorum, blockNumKey(id), buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

type reader struct {
	buf []byte
	pos int
}

var errShortBuffer = errors.New("quorum: truncated record")

func (r *reader) string() (string, error) {
	if r.pos+4 > len(r.buf) {
		return "", errShortBuffer
	}
	n := int(binary.BigEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	if r.pos+n > len(r.buf) {
		return "", errShortBuffer
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

func (r *reader) fixed(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, errShortBuffer
	}
	out := r.buf[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

func (r *reader) byte() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, errShortBuffer
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) uint32() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, errShortBuffer
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) uint64() (uint64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, errShortBuffer
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}
