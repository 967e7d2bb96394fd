package value

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash is the 64-bit identifier used for function paths, type tags and
// (type, method) instance-function pairs. All method dispatch and type
// tests in the VM go through a Hash.
type Hash uint64

// HashFunction hashes a dotted/namespaced function or type path, e.g.
// "std::string::len" or "MyType".
func HashFunction(path string) Hash {
	return Hash(xxhash.Sum64String(path))
}

// HashInstanceFunction combines a value's type hash with a method name
// hash to produce the key instance methods are looked up by. The VM's
// arithmetic and index fallbacks (with MethodAdd ... MethodIndexSet) and
// CallInstance/LoadInstanceFn all go through this combinator.
func HashInstanceFunction(ty Hash, method Hash) Hash {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(ty))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(method))
	return Hash(xxhash.Sum64(buf[:]))
}

// Well-known type hashes for the built-in primitive and container
// variants, used as the left-hand side of an `is` test against a type
// that isn't a TypedTuple/TypedObject/Option/Result.
var (
	TypeUnit         = HashFunction("::builtin::unit")
	TypeBool         = HashFunction("::builtin::bool")
	TypeByte         = HashFunction("::builtin::byte")
	TypeInteger      = HashFunction("::builtin::int")
	TypeFloat        = HashFunction("::builtin::float")
	TypeChar         = HashFunction("::builtin::char")
	TypeString       = HashFunction("::builtin::string")
	TypeBytes        = HashFunction("::builtin::bytes")
	TypeVec          = HashFunction("::builtin::vec")
	TypeTuple        = HashFunction("::builtin::tuple")
	TypeObject       = HashFunction("::builtin::object")
	TypeOption       = HashFunction("::builtin::option")
	TypeResult       = HashFunction("::builtin::result")
	TypeFuture       = HashFunction("::builtin::future")
	TypeStream       = HashFunction("::builtin::stream")
	TypeTypeValue    = HashFunction("::builtin::type")
)

// Well-known method name hashes used to dispatch arithmetic to instance
// functions when neither operand is a plain Integer/Float pair.
var (
	MethodAdd = HashFunction("ADD")
	MethodSub = HashFunction("SUB")
	MethodMul = HashFunction("MUL")
	MethodDiv = HashFunction("DIV")

	MethodIndexGet = HashFunction("INDEX_GET")
	MethodIndexSet = HashFunction("INDEX_SET")
)
