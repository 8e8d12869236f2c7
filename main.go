////////////////////////////////////////////////////////////////////////////////
// Okinoko Grants: permissioned grant disbursements for the vsc network
////////////////////////////////////////////////////////////////////////////////

package main

import "okinoko_grants/cli"

func main() {
	cli.Execute()
}
