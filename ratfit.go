/*
Package ratfit computes rational minimax approximations p(x)/q(x) of real functions
at arbitrary precision.

The approximation/rational package fits a single rational function on an interval
with the Remez method, the approximation/partition package bisects a domain until
every piece meets a target peak error, and the table package serializes the result
as decimal text. The ratfit command in cmd/ratfit drives them from a configuration
file.
*/
package ratfit
