// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stats

import "math"

// StoppingBounds returns the llr bounds of an SPRT with the given type I
// and type II error probabilities.
func StoppingBounds(alpha, beta float64) (lower float64, upper float64) {
	lower = math.Log(beta / (1 - alpha))
	upper = math.Log((1 - beta) / alpha)
	return
}

// ScoreToElo converts an expected score into an elo difference. Scores
// outside (0, 1) have no finite elo and map to 0.
func ScoreToElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0

	default:
		return -400 * math.Log10(1/x-1)
	}
}

// expectedScore is the logistic elo curve.
func expectedScore(elo float64) float64 {
	return 1 / (1 + math.Pow(10, -elo/400))
}

// eloToWDL converts the bayesian elo to its wdl probabilities.
func eloToWDL(elo, dlo float64) (w float64, d float64, l float64) {
	w = expectedScore(elo - dlo)  // win probability sigmoid
	l = expectedScore(-elo - dlo) // loss probability sigmoid
	d = 1 - w - l                 // draw probability curve
	return w, d, l
}

// drawElo converts the win and loss probabilities into the bayesian
// draw elo.
func drawElo(w, l float64) float64 {
	return 200 * math.Log10((1/w-1)*(1/l-1))
}

// phiInv is the inverse of the standard normal cdf.
func phiInv(p float64) float64 {
	return math.Sqrt2 * erfInv(2*p-1)
}

// erfInv approximates the inverse error function with Winitzki's
// closed form, which is accurate to about 2e-3.
func erfInv(x float64) float64 {
	a := 8 * (math.Pi - 3) / (3 * math.Pi * (4 - math.Pi))
	y := math.Log(1 - x*x)
	z := 2/(math.Pi*a) + y/2

	return math.Copysign(math.Sqrt(math.Sqrt(z*z-y/a)-z), x)
}

// LOS returns the likelihood of superiority of a player with the given
// number of wins and losses. Draws carry no information here.
func LOS(ws, ls int) float64 {
	if ws+ls == 0 {
		return 0.5
	}

	w, l := float64(ws), float64(ls)
	return 0.5 + 0.5*math.Erf((w-l)/math.Sqrt(2*(w+l)))
}
