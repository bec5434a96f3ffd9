package roles

import "github.com/sig-0/go-custody"

const abiJSON = `[
	{"type":"function","name":"grantRole","stateMutability":"nonpayable",
	 "inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"revokeRole","stateMutability":"nonpayable",
	 "inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"renounceRole","stateMutability":"nonpayable",
	 "inputs":[{"name":"role","type":"bytes32"},{"name":"callerConfirmation","type":"address"}],"outputs":[]},
	{"type":"function","name":"hasRole","stateMutability":"view",
	 "inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getRoleAdmin","stateMutability":"view",
	 "inputs":[{"name":"role","type":"bytes32"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"getRoleMembers","stateMutability":"view",
	 "inputs":[{"name":"role","type":"bytes32"}],
	 "outputs":[{"name":"","type":"address[]"}]},

	{"type":"event","name":"RoleGranted","anonymous":false,"inputs":[
		{"name":"role","type":"bytes32","indexed":true},
		{"name":"account","type":"address","indexed":true},
		{"name":"sender","type":"address","indexed":true}]},
	{"type":"event","name":"RoleRevoked","anonymous":false,"inputs":[
		{"name":"role","type":"bytes32","indexed":true},
		{"name":"account","type":"address","indexed":true},
		{"name":"sender","type":"address","indexed":true}]},
	{"type":"event","name":"RoleAdminChanged","anonymous":false,"inputs":[
		{"name":"role","type":"bytes32","indexed":true},
		{"name":"previousAdminRole","type":"bytes32","indexed":true},
		{"name":"newAdminRole","type":"bytes32","indexed":true}]}
]`

// ABI is the role administration surface shared by every role-gated contract
var ABI = custody.MustParseABI(abiJSON)
