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

// Elo returns the likely elo of the target player along with the lower
// and upper bounds of its 95% confidence interval.
func Elo(ws, ls, ds int) (low float64, mid float64, high float64) {
	N := float64(ws + ls + ds) // total number of games

	if N == 0 {
		return 0, 0, 0
	}

	w := float64(ws) / N // measured win probability
	l := float64(ls) / N // measured loss probability
	d := float64(ds) / N // measured draw probability

	// empirical mean of random variable
	mu := w + d/2

	// standard error of the mean
	sigma := math.Sqrt(
		w*math.Pow(1-mu, 2)+
			l*math.Pow(0-mu, 2)+
			d*math.Pow(0.5-mu, 2),
	) / math.Sqrt(N)

	delta := phiInv(0.975) * sigma
	return ScoreToElo(mu - delta), ScoreToElo(mu), ScoreToElo(mu + delta)
}
