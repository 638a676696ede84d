package constants

// IDRandomBytes is the number of random bytes behind every row ID; 16 bytes
// keeps IDs short enough for logs while staying unguessable.
const IDRandomBytes = 16
