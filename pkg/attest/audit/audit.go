// Package audit mirrors finalized attestations into Firestore for admin
// visibility, adapted from the teacher's Firestore audit-trail mirror.
package audit

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
)

const collection = "sxt_attestations"

// Mirror writes finalized attestations to a Firestore collection, one
// document per (block_number, signer_address).
type Mirror struct {
	client *firestore.Client
}

// New wraps an already-constructed Firestore client.
func New(client *firestore.Client) *Mirror {
	return &Mirror{client: client}
}

// record is the Firestore document shape for one attestation.
type record struct {
	BlockNumber uint64 `firestore:"block_number"`
	Signer      string `firestore:"signer_address"`
	StateRoot   string `firestore:"state_root"`
	BlockHash   string `firestore:"block_hash"`
	R           string `firestore:"r"`
	S           string `firestore:"s"`
	V           byte   `firestore:"v"`
}

// MirrorAttestation persists one finalized attestation. Document ID is
// "<block_number>-<signer_address>" so re-mirroring the same attestation
// is idempotent.
func (m *Mirror) MirrorAttestation(ctx context.Context, blockNumber uint64, att attestor.EthereumAttestation) error {
	docID := fmt.Sprintf("%d-%x", blockNumber, att.Addr)
	doc := record{
		BlockNumber: blockNumber,
		Signer:      fmt.Sprintf("0x%x", att.Addr),
		StateRoot:   fmt.Sprintf("0x%x", att.StateRoot),
		BlockHash:   fmt.Sprintf("0x%x", att.BlockHash),
		R:           fmt.Sprintf("0x%x", att.R),
		S:           fmt.Sprintf("0x%x", att.S),
		V:           att.V,
	}
	_, err := m.client.Collection(collection).Doc(docID).Set(ctx, doc)
	return err
}

// AttestationsForBlock fetches every mirrored attestation for a block and
// rebuilds each one (the public key is not mirrored and stays empty).
func (m *Mirror) AttestationsForBlock(ctx context.Context, blockNumber uint64) ([]attestor.EthereumAttestation, error) {
	iter := m.client.Collection(collection).Where("block_number", "==", blockNumber).Documents(ctx)
	defer iter.Stop()

	var out []attestor.EthereumAttestation
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var r record
		if err := doc.DataTo(&r); err != nil {
			return nil, err
		}
		att, err := decodeRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

func decodeRecord(r record) (attestor.EthereumAttestation, error) {
	att := attestor.EthereumAttestation{V: r.V}
	if err := fillHex(att.Addr[:], r.Signer); err != nil {
		return att, err
	}
	if err := fillHex(att.R[:], r.R); err != nil {
		return att, err
	}
	if err := fillHex(att.S[:], r.S); err != nil {
		return att, err
	}
	if err := fillHex(att.StateRoot[:], r.StateRoot); err != nil {
		return att, err
	}
	if err := fillHex(att.BlockHash[:], r.BlockHash); err != nil {
		return att, err
	}
	return att, nil
}

// fillHex decodes a "0x"-prefixed hex string into dst, which must already
// be sized to the expected byte length.
func fillHex(dst []byte, hexStr string) error {
	b, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return fmt.Errorf("audit: expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
