package contract

import "okinoko_grants/sdk"

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// packU64LE appends the encoded number to dst and returns the new slice.
func packU64LE(x uint64, dst []byte) []byte {
	return append(dst,
		byte(x),
		byte(x>>8),
		byte(x>>16),
		byte(x>>24),
		byte(x>>32),
		byte(x>>40),
		byte(x>>48),
		byte(x>>56),
	)
}

// addressKey is prefix plus the raw address bytes.
func addressKey(prefix byte, addr sdk.Address) string {
	addrStr := addr.String()
	buf := make([]byte, 0, 1+len(addrStr))
	buf = append(buf, prefix)
	buf = append(buf, addrStr...)
	return string(buf)
}

// votingMemberKey flags an address as voting member.
func votingMemberKey(addr sdk.Address) string {
	return addressKey(kVotingMember, addr)
}

// institutionKey holds the encoded Institution for an address.
func institutionKey(addr sdk.Address) string {
	return addressKey(kInstitution, addr)
}

// proposalKey encodes id under 0x10 prefix keeping proposal records contiguous.
func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposalMeta
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// proposalVoteKey mixes proposal id and voter address into one receipt key.
func proposalVoteKey(id uint64, voter sdk.Address) string {
	addr := voter.String()
	buf := make([]byte, 0, 1+8+len(addr))
	buf = append(buf, kVoteReceipt)
	buf = packU64LE(id, buf)
	buf = append(buf, addr...)
	return string(buf)
}

// treasuryKey stores the pooled balance of one asset.
func treasuryKey(asset sdk.Asset) string {
	return addressKey(kTreasury, sdk.Address(asset.String()))
}
