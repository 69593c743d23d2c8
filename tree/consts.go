package tree

const (
	// headerMagic identifies a mailtree file, the same role
	// "HAYSTDAT"/"HAYSTIDX" play in storage/mmap/types.go.
	headerMagic = "MAILTREE"

	// formatVersion is a compile-time constant; an indexid mismatch is
	// the tree's only versioning dimension — there is no in-place
	// format migration, so this only guards against a file written by
	// an incompatible build of this package itself.
	formatVersion = uint32(1)

	// headerSize is the fixed, persisted size of the header region.
	headerSize = 64

	// nodeSize is the fixed, persisted size of one node record: UID,
	// record position, left/right/parent node indices, and a
	// color+reserved word.
	nodeSize = 24

	// sentinelIndex is the reserved node-store slot that is both the
	// logical tree-null and the leaf-parent placeholder for red/black
	// bookkeeping. It always exists and is never freed.
	sentinelIndex = 0

	// defaultMinRecords bounds MIN_SIZE from below (INDEX_MIN_RECORDS_COUNT
	// in the original is defined elsewhere in lib-index, not retrieved
	// here, so this picks a reasonable constant of the same shape).
	defaultMinRecords = 32

	// defaultGrowPercentage matches INDEX_GROW_PERCENTAGE.
	defaultGrowPercentage = 20

	// defaultMinGrowCount is the floor grow_count can never go below,
	// per _mail_tree_grow's "if (grow_count < 16) grow_count = 16;".
	defaultMinGrowCount = 16

	// defaultTruncatePercentage/defaultTruncateKeepPercentage mirror
	// INDEX_TRUNCATE_PERCENTAGE / INDEX_TRUNCATE_KEEP_PERCENTAGE.
	defaultTruncatePercentage     = 30
	defaultTruncateKeepPercentage = 50
)

type color uint8

const (
	red color = iota
	black
)
