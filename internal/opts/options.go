/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package opts

type Options struct {
	AllTransitives  bool
	DeleteRedundant bool
	MaxWorkers      int
}

// Workers is the effective worker count, never less than one.
func (self *Options) Workers() int {
	if self.MaxWorkers <= 0 {
		return 1
	} else {
		return self.MaxWorkers
	}
}

func GetDefaultOptions() Options {
	return Options{
		AllTransitives:  AllTransitives,
		DeleteRedundant: DeleteRedundant,
		MaxWorkers:      MaxWorkers,
	}
}
