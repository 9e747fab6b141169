package purchase

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/nft-checkout/internal/chain"
	"github.com/hxuan190/nft-checkout/internal/domain"
	"github.com/hxuan190/nft-checkout/internal/marketplace"
)

type fakeSource struct {
	raw    []byte
	err    error
	params marketplace.BuyNowParams
}

func (f *fakeSource) BuyNowTransaction(ctx context.Context, p marketplace.BuyNowParams) ([]byte, error) {
	f.params = p
	return f.raw, f.err
}

type fakeChain struct {
	blockhash chain.Blockhash
	accounts  map[solana.PublicKey][]byte

	height  uint64
	status  *chain.SignatureStatus
	sentTxs []*solana.Transaction
	sendErr error
	sendSig solana.Signature
}

func (f *fakeChain) LatestBlockhash(ctx context.Context) (chain.Blockhash, error) {
	return f.blockhash, nil
}

func (f *fakeChain) BlockHeight(ctx context.Context) (uint64, error) {
	return f.height, nil
}

func (f *fakeChain) AccountData(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.accounts[k]
	}
	return out, nil
}

func (f *fakeChain) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}
	f.sentTxs = append(f.sentTxs, tx)
	return f.sendSig, nil
}

func (f *fakeChain) SignatureStatus(ctx context.Context, sig solana.Signature) (*chain.SignatureStatus, error) {
	return f.status, nil
}

// fakeBlockhashes stands in for the cached blockhash service.
type fakeBlockhashes struct {
	value chain.Blockhash
	calls int
}

func (f *fakeBlockhashes) Get(ctx context.Context) (chain.Blockhash, error) {
	f.calls++
	return f.value, nil
}

func validListing() *domain.Listing {
	return &domain.Listing{
		Mint:          "mintA",
		Seller:        "sellerA",
		AuctionHouse:  "houseA",
		TokenATA:      "ataA",
		PriceLamports: 1_500_000_000,
		Expiry:        domain.NoExpiry,
	}
}

// envelopeBytes builds a marketplace-style signed envelope: fee payer is the
// marketplace authority, blockhash already stale.
func envelopeBytes(t *testing.T, programID solana.PublicKey, authority *solana.Wallet, extra solana.PublicKey) []byte {
	t.Helper()

	inst := solana.NewInstruction(programID, solana.AccountMetaSlice{
		{PublicKey: authority.PublicKey(), IsSigner: true, IsWritable: true},
		{PublicKey: extra, IsWritable: true},
	}, []byte{0x01, 0x02, 0x03})

	staleHash := solana.Hash{}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{inst},
		staleHash,
		solana.TransactionPayer(authority.PublicKey()),
	)
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func TestAssembleRebuildsWithBuyerAndFreshBlockhash(t *testing.T) {
	programID := solana.NewWallet().PublicKey()
	authority := solana.NewWallet()
	seller := solana.NewWallet().PublicKey()
	buyer := solana.NewWallet().PublicKey()

	freshHash := solana.Hash(solana.NewWallet().PublicKey())
	source := &fakeSource{raw: envelopeBytes(t, programID, authority, seller)}
	client := &fakeChain{blockhash: chain.Blockhash{Hash: solana.Hash(solana.NewWallet().PublicKey())}}
	blockhashes := &fakeBlockhashes{value: chain.Blockhash{Hash: freshHash, LastValidBlockHeight: 285113640}}

	assembled, err := NewAssembler(source, client, blockhashes).Assemble(context.Background(), buyer, validListing())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if source.params.Buyer != buyer.String() {
		t.Errorf("buyer forwarded as %q", source.params.Buyer)
	}

	msg := assembled.Tx.Message
	// The blockhash must come from the provider, not a direct RPC fetch.
	if blockhashes.calls != 1 {
		t.Errorf("provider calls = %d, want 1", blockhashes.calls)
	}
	if msg.RecentBlockhash != freshHash {
		t.Errorf("RecentBlockhash = %s, want fresh", msg.RecentBlockhash)
	}
	if msg.AccountKeys[0] != buyer {
		t.Errorf("fee payer = %s, want buyer", msg.AccountKeys[0])
	}
	if assembled.LastValidBlockHeight != 285113640 {
		t.Errorf("LastValidBlockHeight = %d", assembled.LastValidBlockHeight)
	}

	if len(msg.Instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(msg.Instructions))
	}
	compiled := msg.Instructions[0]
	if msg.AccountKeys[compiled.ProgramIDIndex] != programID {
		t.Errorf("program ID not preserved")
	}
	if string(compiled.Data) != "\x01\x02\x03" {
		t.Errorf("instruction data not preserved: %x", compiled.Data)
	}

	// The economic instruction still names the original accounts.
	first := msg.AccountKeys[compiled.Accounts[0]]
	second := msg.AccountKeys[compiled.Accounts[1]]
	if first != authority.PublicKey() || second != seller {
		t.Errorf("instruction accounts not preserved: %s, %s", first, second)
	}
}

func TestAssembleRejectsIncompleteListing(t *testing.T) {
	listing := validListing()
	listing.Seller = ""

	_, err := NewAssembler(&fakeSource{}, &fakeChain{}, &fakeBlockhashes{}).Assemble(context.Background(), solana.NewWallet().PublicKey(), listing)
	if !errors.Is(err, domain.ErrIncompleteListing) {
		t.Fatalf("err = %v, want ErrIncompleteListing", err)
	}
}

func TestAssembleUndecodableEnvelope(t *testing.T) {
	source := &fakeSource{raw: []byte{0xff}}

	_, err := NewAssembler(source, &fakeChain{}, &fakeBlockhashes{}).Assemble(context.Background(), solana.NewWallet().PublicKey(), validListing())
	if !errors.Is(err, domain.ErrMalformedInstructionSet) {
		t.Fatalf("err = %v, want ErrMalformedInstructionSet", err)
	}
}

func TestDecompileInstructions(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	program := solana.NewWallet().PublicKey()
	tableKey := solana.NewWallet().PublicKey()
	loadedWritable := solana.NewWallet().PublicKey()
	loadedReadonly := solana.NewWallet().PublicKey()

	msg := &solana.Message{
		AccountKeys: []solana.PublicKey{payer, program},
		Header: solana.MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlySignedAccounts:   0,
			NumReadonlyUnsignedAccounts: 1,
		},
		AddressTableLookups: []solana.MessageAddressTableLookup{{
			AccountKey:      tableKey,
			WritableIndexes: []uint8{0},
			ReadonlyIndexes: []uint8{1},
		}},
		Instructions: []solana.CompiledInstruction{{
			ProgramIDIndex: 1,
			Accounts:       []uint16{0, 2, 3},
			Data:           []byte{0x09},
		}},
	}
	tables := map[solana.PublicKey]solana.PublicKeySlice{
		tableKey: {loadedWritable, loadedReadonly},
	}

	instructions, err := decompileInstructions(msg, tables)
	if err != nil {
		t.Fatalf("decompileInstructions: %v", err)
	}
	if len(instructions) != 1 {
		t.Fatalf("instructions = %d, want 1", len(instructions))
	}

	inst := instructions[0]
	if inst.ProgramID() != program {
		t.Errorf("ProgramID = %s", inst.ProgramID())
	}

	accounts := inst.Accounts()
	if len(accounts) != 3 {
		t.Fatalf("accounts = %d, want 3", len(accounts))
	}
	if accounts[0].PublicKey != payer || !accounts[0].IsSigner || !accounts[0].IsWritable {
		t.Errorf("static signer meta wrong: %+v", accounts[0])
	}
	if accounts[1].PublicKey != loadedWritable || accounts[1].IsSigner || !accounts[1].IsWritable {
		t.Errorf("loaded writable meta wrong: %+v", accounts[1])
	}
	if accounts[2].PublicKey != loadedReadonly || accounts[2].IsSigner || accounts[2].IsWritable {
		t.Errorf("loaded readonly meta wrong: %+v", accounts[2])
	}
}

func TestDecompileInstructionsMissingTable(t *testing.T) {
	msg := &solana.Message{
		AccountKeys: []solana.PublicKey{solana.NewWallet().PublicKey()},
		Header:      solana.MessageHeader{NumRequiredSignatures: 1},
		AddressTableLookups: []solana.MessageAddressTableLookup{{
			AccountKey:      solana.NewWallet().PublicKey(),
			WritableIndexes: []uint8{0},
		}},
	}

	_, err := decompileInstructions(msg, map[solana.PublicKey]solana.PublicKeySlice{})
	if !errors.Is(err, domain.ErrPartialLookupFailure) {
		t.Fatalf("err = %v, want ErrPartialLookupFailure", err)
	}
}
