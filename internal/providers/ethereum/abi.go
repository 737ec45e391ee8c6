package ethereum

import (
	"github.com/ethereum/go-ethereum/crypto"
)

// defaultContractABI is used for contracts stored without an interface descriptor
const defaultContractABI = `[
	{"type":"function","name":"mintToken","stateMutability":"nonpayable","inputs":[
		{"name":"to_","type":"address"},
		{"name":"gameTokenId_","type":"uint256"},
		{"name":"amount_","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"burnToken","stateMutability":"nonpayable","inputs":[
		{"name":"id_","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"burnBatchToken","stateMutability":"nonpayable","inputs":[
		{"name":"ids_","type":"uint256[]"}],"outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true}]}
]`

const (
	methodMint      = "mintToken"
	methodBurn      = "burnToken"
	methodBurnBatch = "burnBatchToken"
)

// Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
