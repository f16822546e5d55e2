/*
Package saber implements the Saber key encapsulation mechanism, a lattice-based
KEM over the polynomial ring Z_q[X]/(X^N + 1) with power-of-two moduli, in pure
Go. It provides the IND-CPA encryption primitive, the CCA2-secure KEM obtained
from it through the Fujisaki-Okamoto transform with implicit rejection, and
batched entry points that advance two or four independent KEM instances through
one pipelined sequence of ring operations.

The polynomial arithmetic, including the four-way Toom-Cook multiplication and
its batched form, lives in the ring subpackage. Hash and XOF backends (SHA-3,
Streebog, BLAKE3) and the random byte source are injected capabilities chosen
when the Scheme is constructed.
*/
package saber
